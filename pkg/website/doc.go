// Package website maps request domains to website ids for multi-site
// deployments.
//
// Rewrites are stored per website, so the web router needs to know which
// website a domain belongs to before it can look up a pretty URL:
//
//	sites := website.New(website.Sites{
//		"example.com":   1,
//		"www.example.com": 1,
//		"*.shop.example": 2,
//	}, 0)
//	sites.ID("Blog.Shop.Example:8443") // 2
//
// Exact hosts take priority over wildcards. Matching ignores case, ports
// and a trailing dot.
package website
