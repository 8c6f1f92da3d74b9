package internal

import (
	"fmt"
	"strings"
	"sync"
)

// Registry maps class identifiers to handlers. Routers scan it by
// namespace when they build their route table, and the App looks
// resolved classes up in it to dispatch requests.
//
// Class identifiers are slash-separated qualified names, for example
// "web/frontend/users/Profile". Registration order is preserved and
// determines route order within a router.
type Registry struct {
	handlers map[string]Handler
	order    []string
	mu       sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds a handler under class.
func (r *Registry) Register(class string, h Handler) error {
	class = strings.Trim(strings.TrimSpace(class), "/")
	if err := validateClass(class); err != nil {
		return err
	}
	if h == nil {
		return invalidValue("handler", class, "handler is nil", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.handlers[class]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateClass, class)
	}
	r.handlers[class] = h
	r.order = append(r.order, class)
	return nil
}

// MustRegister is like Register but panics on error. It returns the
// registry so startup code can chain calls.
func (r *Registry) MustRegister(class string, h Handler) *Registry {
	if err := r.Register(class, h); err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the handler registered under class.
func (r *Registry) Lookup(class string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[class]
	return h, ok
}

// List returns the classes under namespace in registration order. Without
// recursive only direct children of namespace are listed.
func (r *Registry) List(namespace string, recursive bool) []string {
	prefix := strings.Trim(namespace, "/")
	if prefix != "" {
		prefix += "/"
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for _, class := range r.order {
		rest, ok := strings.CutPrefix(class, prefix)
		if !ok {
			continue
		}
		if !recursive && strings.Contains(rest, "/") {
			continue
		}
		out = append(out, class)
	}
	return out
}

// Len returns the number of registered handlers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

func validateClass(class string) error {
	if class == "" {
		return invalidValue("class", class, "class is empty", nil)
	}
	for seg := range strings.SplitSeq(class, "/") {
		if seg == "" {
			return invalidValue("class", class, "empty namespace segment", nil)
		}
		for _, c := range seg {
			if !isClassRune(c) {
				return invalidValue("class", class, fmt.Sprintf("invalid character %q", c), nil)
			}
		}
	}
	return nil
}

func isClassRune(c rune) bool {
	return c == '_' || c == '-' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
