package harness

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var varRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// substitute replaces ${name} references. A string that is exactly one
// reference takes the variable's value and type.
func substitute(v any, vars map[string]any) (any, error) {
	switch x := v.(type) {
	case string:
		if m := varRef.FindStringSubmatch(x); m != nil && m[0] == x {
			val, ok := vars[m[1]]
			if !ok {
				return nil, fmt.Errorf("undefined variable %q", m[1])
			}
			return val, nil
		}
		var missing string
		out := varRef.ReplaceAllStringFunc(x, func(ref string) string {
			name := varRef.FindStringSubmatch(ref)[1]
			val, ok := vars[name]
			if !ok {
				missing = name
				return ref
			}
			return fmt.Sprint(val)
		})
		if missing != "" {
			return nil, fmt.Errorf("undefined variable %q", missing)
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			s, err := substitute(val, vars)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = s
		}
		return out, nil
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			s, err := substitute(val, vars)
			if err != nil {
				return nil, err
			}
			out[i] = s
		}
		return out, nil
	default:
		return v, nil
	}
}

// lookup resolves a field path such as "tasks[0].title" in a record.
func lookup(rec any, path string) (any, bool) {
	cur := rec
	for _, seg := range strings.Split(path, ".") {
		name, rest, _ := strings.Cut(seg, "[")
		if name != "" {
			m, ok := cur.(map[string]any)
			if !ok {
				return nil, false
			}
			if cur, ok = m[name]; !ok {
				return nil, false
			}
		}
		for rest != "" {
			idx, tail, ok := strings.Cut(rest, "]")
			if !ok {
				return nil, false
			}
			n, err := strconv.Atoi(idx)
			arr, isArr := cur.([]any)
			if err != nil || !isArr || n < 0 || n >= len(arr) {
				return nil, false
			}
			cur = arr[n]
			rest = strings.TrimPrefix(tail, "[")
		}
	}
	return cur, true
}

// lastKey is the final field name of a path, used to pick coercions.
func lastKey(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		path = path[i+1:]
	}
	name, _, _ := strings.Cut(path, "[")
	return name
}

// namespacer keeps email literals of the two transports apart when both hit
// one store: a@x.io becomes a+rest-<run>@x.io on REST.
type namespacer struct {
	run string
}

func (n namespacer) apply(transport, s string) string {
	local, domain, ok := strings.Cut(s, "@")
	if !ok || n.run == "" {
		return s
	}
	return local + "+" + transport + "-" + n.run + "@" + domain
}

// revert maps namespaced values of either transport back to the literal, so
// records read from the shared store agree on both sides.
func (n namespacer) revert() func(string) string {
	if n.run == "" {
		return nil
	}
	re := regexp.MustCompile(`\+[a-z]+-` + regexp.QuoteMeta(n.run) + `@`)
	return func(s string) string { return re.ReplaceAllString(s, "@") }
}
