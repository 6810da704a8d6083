package transform

import "sort"

// Func is a whole-file text transformation.
type Func func(string) string

// NameStripLineComments names StripLineComments for rewrite operations.
const NameStripLineComments = "strip-line-comments"

var named = map[string]Func{
	NameStripLineComments: StripLineComments,
}

// Lookup returns the named transformation.
func Lookup(name string) (Func, bool) {
	fn, ok := named[name]

	return fn, ok
}

// Names returns the registered transformation names in sorted order.
func Names() []string {
	out := make([]string, 0, len(named))
	for name := range named {
		out = append(out, name)
	}

	sort.Strings(out)

	return out
}
