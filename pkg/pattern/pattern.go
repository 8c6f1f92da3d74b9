package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// ReservedNames lists placeholder names that collide with values the serving
// layer injects into handlers. Patterns using them are rejected by Parse.
var ReservedNames = []string{"container", "route_info", "route_data"}

// DefaultVarRegexp is the constraint applied to placeholders declared without one.
const DefaultVarRegexp = `[^/]+`

var validName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type tokenKind uint8

const (
	tokenLiteral tokenKind = iota
	tokenVar
	tokenOptOpen
	tokenOptClose
)

type token struct {
	text   string // literal text, or the raw "{...}" form of a placeholder
	name   string
	regexp string // empty means DefaultVarRegexp
	kind   tokenKind
}

// Var describes a placeholder declared in a pattern.
type Var struct {
	Name   string
	Regexp string // empty when declared without a constraint
}

// Pattern is a parsed and compiled route pattern.
// It is immutable and safe for concurrent use.
type Pattern struct {
	re        *regexp.Regexp
	heuristic *regexp.Regexp
	raw       string
	prefix    string
	tokens    []token
	vars      []Var
	varIndex  []int
}

// Parse validates and compiles a route pattern.
func Parse(raw string) (*Pattern, error) {
	if raw == "" {
		return nil, ErrEmptyPattern
	}

	tokens, err := tokenize(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, raw)
	}

	re, err := compile(tokens, false)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("%w: %q", ErrInvalidRegexp, raw), err)
	}
	heuristic, err := compile(tokens, true)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("%w: %q", ErrInvalidRegexp, raw), err)
	}

	p := &Pattern{
		raw:       raw,
		tokens:    tokens,
		re:        re,
		heuristic: heuristic,
	}
	if len(tokens) > 0 && tokens[0].kind == tokenLiteral {
		p.prefix = tokens[0].text
	}
	for _, t := range tokens {
		if t.kind != tokenVar {
			continue
		}
		p.vars = append(p.vars, Var{Name: t.name, Regexp: t.regexp})
		p.varIndex = append(p.varIndex, re.SubexpIndex(t.name))
	}

	return p, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level route declarations.
func MustParse(raw string) *Pattern {
	p, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// Validate reports whether raw is a well-formed pattern without keeping the result.
func Validate(raw string) error {
	_, err := Parse(raw)
	return err
}

// String returns the pattern as written.
func (p *Pattern) String() string {
	return p.raw
}

// Prefix returns the literal text preceding the first placeholder or
// optional segment.
func (p *Pattern) Prefix() string {
	return p.prefix
}

// Vars returns the placeholders in declaration order.
func (p *Pattern) Vars() []Var {
	return slices.Clone(p.vars)
}

// Match reports whether path matches the pattern and returns the extracted
// placeholder values. Placeholders inside an optional segment that did not
// participate in the match are omitted.
func (p *Pattern) Match(path string) (map[string]string, bool) {
	m := p.re.FindStringSubmatchIndex(path)
	if m == nil {
		return nil, false
	}

	vars := make(map[string]string, len(p.vars))
	for i, v := range p.vars {
		idx := p.varIndex[i]
		if idx < 0 || m[2*idx] < 0 {
			continue
		}
		vars[v.Name] = path[m[2*idx]:m[2*idx+1]]
	}
	return vars, true
}

// Heuristic returns a loose regular expression for the pattern: constrained
// placeholders keep their constraint, unconstrained ones become (.*?).
// It is used to choose between several routes that share a handler.
func (p *Pattern) Heuristic() *regexp.Regexp {
	return p.heuristic
}

// Build substitutes params into the pattern's placeholders. Placeholders
// without a supplied value are written back unchanged, and optional segment
// markers are dropped. Values are not checked against their constraints.
func (p *Pattern) Build(params map[string]string) string {
	var b strings.Builder
	for _, t := range p.tokens {
		switch t.kind {
		case tokenLiteral:
			b.WriteString(t.text)
		case tokenVar:
			if v, ok := params[t.name]; ok {
				b.WriteString(v)
			} else {
				b.WriteString(t.text)
			}
		}
	}
	return b.String()
}

func tokenize(raw string) ([]token, error) {
	var (
		tokens []token
		lit    strings.Builder
		depth  int
		closed bool
		seen   = make(map[string]struct{})
	)

	flush := func() {
		if lit.Len() > 0 {
			tokens = append(tokens, token{kind: tokenLiteral, text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if closed && c != ']' {
			return nil, ErrOptionalNotTrailing
		}

		switch c {
		case '{':
			end, err := closingBrace(raw, i)
			if err != nil {
				return nil, err
			}
			t, err := parseVar(raw[i : end+1])
			if err != nil {
				return nil, err
			}
			if _, dup := seen[t.name]; dup {
				return nil, ErrDuplicatePlaceholder
			}
			seen[t.name] = struct{}{}
			flush()
			tokens = append(tokens, t)
			i = end
		case '}':
			return nil, ErrUnbalancedBraces
		case '[':
			flush()
			depth++
			tokens = append(tokens, token{kind: tokenOptOpen})
		case ']':
			if depth == 0 {
				return nil, ErrUnbalancedBrackets
			}
			flush()
			if tokens[len(tokens)-1].kind == tokenOptOpen {
				return nil, ErrEmptyOptional
			}
			depth--
			closed = true
			tokens = append(tokens, token{kind: tokenOptClose})
		default:
			lit.WriteByte(c)
		}
	}

	if depth != 0 {
		return nil, ErrUnbalancedBrackets
	}
	flush()

	return tokens, nil
}

// closingBrace returns the index of the brace closing the placeholder that
// opens at start. Braces nest so that regexp quantifiers like \d{4} work.
func closingBrace(raw string, start int) (int, error) {
	depth := 0
	for i := start; i < len(raw); i++ {
		switch raw[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, ErrUnbalancedBraces
}

// parseVar parses a "{name}" or "{name:regexp}" placeholder.
func parseVar(text string) (token, error) {
	body := text[1 : len(text)-1]
	name, expr, hasExpr := strings.Cut(body, ":")
	name = strings.TrimSpace(name)
	expr = strings.TrimSpace(expr)

	if !validName.MatchString(name) {
		return token{}, ErrInvalidPlaceholder
	}
	if slices.Contains(ReservedNames, name) {
		return token{}, ErrReservedName
	}
	if hasExpr {
		if expr == "" {
			return token{}, ErrInvalidRegexp
		}
		if _, err := regexp.Compile("^(?:" + expr + ")$"); err != nil {
			return token{}, errors.Join(ErrInvalidRegexp, err)
		}
	}

	return token{kind: tokenVar, text: text, name: name, regexp: expr}, nil
}

func compile(tokens []token, loose bool) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteByte('^')
	for _, t := range tokens {
		switch t.kind {
		case tokenLiteral:
			b.WriteString(regexp.QuoteMeta(t.text))
		case tokenVar:
			switch {
			case loose && t.regexp == "":
				b.WriteString("(.*?)")
			case loose:
				b.WriteString("(" + t.regexp + ")")
			case t.regexp == "":
				fmt.Fprintf(&b, "(?P<%s>%s)", t.name, DefaultVarRegexp)
			default:
				fmt.Fprintf(&b, "(?P<%s>%s)", t.name, t.regexp)
			}
		case tokenOptOpen:
			b.WriteString("(?:")
		case tokenOptClose:
			b.WriteString(")?")
		}
	}
	b.WriteByte('$')
	return regexp.Compile(b.String())
}
