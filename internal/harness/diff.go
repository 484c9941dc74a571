package harness

import (
	"fmt"
	"sort"
	"strconv"
)

// IssueKind classifies a reported difference.
type IssueKind string

const (
	IssueMissing   IssueKind = "missing"   // present on REST only
	IssueExtra     IssueKind = "extra"     // present on gRPC only
	IssueType      IssueKind = "type"
	IssueNull      IssueKind = "null"
	IssueShape     IssueKind = "shape"
	IssueValue     IssueKind = "value"
	IssueForbidden IssueKind = "forbidden"
	IssueOutcome   IssueKind = "outcome"
	IssueStatus    IssueKind = "status"
	IssueExpect    IssueKind = "expect"
	IssueCapture   IssueKind = "capture"
	IssueTransport IssueKind = "transport"
	IssuePanic     IssueKind = "panic"
)

// Issue is one finding of a step. Path locates the field ("tasks[0].title");
// it is empty for step-level issues.
type Issue struct {
	Kind   IssueKind `json:"kind"`
	Path   string    `json:"path,omitempty"`
	Detail string    `json:"detail"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return fmt.Sprintf("%s: %s", i.Kind, i.Detail)
	}
	return fmt.Sprintf("%s %s: %s", i.Kind, i.Path, i.Detail)
}

// Compare diffs two normalized records, rest on the left. Object keys are
// visited in sorted order so the result is deterministic.
func Compare(rest, rpc any) []Issue {
	var out []Issue
	compareAt("", "", rest, rpc, &out)
	return out
}

func compareAt(path, key string, a, b any, out *[]Issue) {
	if a == nil && b == nil {
		return
	}
	if a == nil || b == nil {
		*out = append(*out, Issue{Kind: IssueNull, Path: path,
			Detail: fmt.Sprintf("rest=%s rpc=%s", typeName(a), typeName(b))})
		return
	}
	ta, tb := typeName(a), typeName(b)
	if ta != tb {
		*out = append(*out, Issue{Kind: IssueType, Path: path, Detail: fmt.Sprintf("rest=%s rpc=%s", ta, tb)})
		return
	}

	switch x := a.(type) {
	case map[string]any:
		y := b.(map[string]any)
		var common []string
		for _, k := range sortedKeys(x) {
			if _, ok := y[k]; ok {
				common = append(common, k)
				continue
			}
			*out = append(*out, Issue{Kind: IssueMissing, Path: join(path, k), Detail: "missing in rpc"})
		}
		for _, k := range sortedKeys(y) {
			if _, ok := x[k]; !ok {
				*out = append(*out, Issue{Kind: IssueExtra, Path: join(path, k), Detail: "extra in rpc"})
			}
		}
		for _, k := range common {
			compareAt(join(path, k), k, x[k], y[k], out)
		}
	case []any:
		y := b.([]any)
		switch {
		case len(x) == 0 && len(y) == 0:
		case len(x) == 0 || len(y) == 0:
			*out = append(*out, Issue{Kind: IssueShape, Path: path,
				Detail: fmt.Sprintf("rest has %d elements, rpc has %d", len(x), len(y))})
		default:
			compareAt(path+"[0]", "", x[0], y[0], out)
		}
	default:
		if opaqueFields[key] {
			return
		}
		if a != b {
			*out = append(*out, Issue{Kind: IssueValue, Path: path, Detail: fmt.Sprintf("rest=%v rpc=%v", a, b)})
		}
	}
}

// forbidden reports every forbidden key found anywhere in v.
func forbidden(side string, v any) []Issue {
	var out []Issue
	var walk func(path string, v any)
	walk = func(path string, v any) {
		switch x := v.(type) {
		case map[string]any:
			for _, k := range sortedKeys(x) {
				p := join(path, k)
				if forbiddenFields[k] {
					out = append(out, Issue{Kind: IssueForbidden, Path: p, Detail: side + " response exposes " + k})
				}
				walk(p, x[k])
			}
		case []any:
			for i, el := range x {
				walk(path+"["+strconv.Itoa(i)+"]", el)
			}
		}
	}
	walk("", v)
	return out
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case int64:
		return "integer"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
