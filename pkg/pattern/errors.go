package pattern

import "errors"

// Sentinel errors returned by Parse and Dispatcher.Add.
var (
	ErrEmptyPattern         = errors.New("pattern: empty pattern")
	ErrReservedName         = errors.New("pattern: reserved placeholder name")
	ErrInvalidPlaceholder   = errors.New("pattern: invalid placeholder name")
	ErrDuplicatePlaceholder = errors.New("pattern: duplicate placeholder name")
	ErrUnbalancedBraces     = errors.New("pattern: unbalanced braces")
	ErrUnbalancedBrackets   = errors.New("pattern: unbalanced optional segment brackets")
	ErrOptionalNotTrailing  = errors.New("pattern: optional segments can only occur at the end")
	ErrEmptyOptional        = errors.New("pattern: empty optional segment")
	ErrInvalidRegexp        = errors.New("pattern: invalid placeholder regexp")
)
