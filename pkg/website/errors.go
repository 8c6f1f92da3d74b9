package website

import "errors"

// ErrInvalidSite is returned by ParseSites for a malformed host=id pair.
var ErrInvalidSite = errors.New("website: invalid site mapping")
