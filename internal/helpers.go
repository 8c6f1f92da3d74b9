package internal

import "strconv"

// Scalar lists the types route variables and query parameters convert to.
type Scalar interface {
	string | int | int64 | float64 | bool
}

// ContextValue returns the request context value stored under key, or the
// zero value when it is missing or of another type.
func ContextValue[T any](c Context, key any) T {
	v, _ := c.Get(key).(T)
	return v
}

// Param returns the route variable name as T. Missing or malformed values
// yield the zero value.
func Param[T Scalar](c Context, name string) T {
	v, _ := parseScalar[T](c.Param(name))
	return v
}

// Var converts a variable of a resolved route. ok is false when the route
// has no such variable or it does not parse as T.
func Var[T Scalar](ri RouteInfo, name string) (T, bool) {
	raw, found := ri.vars[name]
	if !found {
		var zero T
		return zero, false
	}
	return parseScalar[T](raw)
}

// Query returns the query parameter name as T, or the zero value.
func Query[T Scalar](c Context, name string) T {
	v, _ := parseScalar[T](c.Query(name))
	return v
}

// QueryDefault returns the query parameter name as T, or defaultValue when
// it is empty or malformed.
func QueryDefault[T Scalar](c Context, name string, defaultValue T) T {
	if raw := c.Query(name); raw != "" {
		if v, ok := parseScalar[T](raw); ok {
			return v
		}
	}
	return defaultValue
}

func parseScalar[T Scalar](raw string) (T, bool) {
	var out T
	var (
		v   any
		err error
	)
	switch any(out).(type) {
	case string:
		v = raw
	case int:
		v, err = strconv.Atoi(raw)
	case int64:
		v, err = strconv.ParseInt(raw, 10, 64)
	case float64:
		v, err = strconv.ParseFloat(raw, 64)
	case bool:
		v, err = strconv.ParseBool(raw)
	default:
		return out, false
	}
	if err != nil {
		return out, false
	}
	return v.(T), true
}
