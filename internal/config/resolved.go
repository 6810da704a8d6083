package config

import "maps"

// Resolved is the immutable result of option resolution: every option in the
// table mapped to a concrete bool or string value.
type Resolved struct {
	values   map[string]any
	explicit map[string]bool
}

// NewResolved builds a Resolved from fully populated values. It is meant to be
// called by the resolver only; callers outside it should never need to.
func NewResolved(values map[string]any, explicit map[string]bool) *Resolved {
	return &Resolved{
		values:   maps.Clone(values),
		explicit: maps.Clone(explicit),
	}
}

// Defaults resolves every option to its declared default.
func Defaults() *Resolved {
	values := make(map[string]any, len(table))
	for i := range table {
		values[table[i].Name] = table[i].DefaultValue()
	}

	return NewResolved(values, nil)
}

// Bool returns the value of a bool option. Unknown names return false.
func (r *Resolved) Bool(name string) bool {
	b, _ := r.values[name].(bool)

	return b
}

// String returns the value of an enum or string option.
func (r *Resolved) String(name string) string {
	s, _ := r.values[name].(string)

	return s
}

// Value returns the raw value of an option.
func (r *Resolved) Value(name string) (any, bool) {
	v, ok := r.values[name]

	return v, ok
}

// Values returns a copy of all resolved values.
func (r *Resolved) Values() map[string]any {
	return maps.Clone(r.values)
}

// Explicit reports whether the option was chosen by the user rather than defaulted.
func (r *Resolved) Explicit(name string) bool {
	return r.explicit[name]
}

// DefaultValue returns the option's default coerced to its Go type.
func (o *Option) DefaultValue() any {
	if o.Type == TypeBool {
		return o.Default == "true"
	}

	return o.Default
}
