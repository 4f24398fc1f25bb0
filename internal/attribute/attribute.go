// Package attribute classifies evaluation context values against what the
// Statsig user model can carry in its custom fields.
package attribute

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Kind is the tagged-union case of an attribute value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	// KindList is a flat list of scalar values.
	KindList
	// KindMap is a nested mapping; Statsig does not evaluate nested custom fields.
	KindMap
	KindUnsupported
)

// String returns string representation of kind
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unsupported"
	}
}

// Representable reports whether Statsig can evaluate a value of this kind.
func (k Kind) Representable() bool {
	switch k {
	case KindNull, KindString, KindNumber, KindBool, KindList:
		return true
	default:
		return false
	}
}

// maxPointerDepth bounds pointer unwrapping so self-referencing values terminate.
const maxPointerDepth = 8

// Classify returns the kind of v.
func Classify(v any) Kind {
	return classify(v, true, 0)
}

// classify only descends into a list when allowList is set, so list elements
// are never walked further and cyclic lists terminate.
func classify(v any, allowList bool, depth int) Kind {
	if v == nil {
		return KindNull
	}

	switch v.(type) {
	case string:
		return KindString
	case bool:
		return KindBool
	case json.Number:
		return KindNumber
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return KindNumber
	case reflect.String:
		return KindString
	case reflect.Bool:
		return KindBool
	case reflect.Slice, reflect.Array:
		if !allowList {
			return KindUnsupported
		}
		for i := 0; i < rv.Len(); i++ {
			switch classify(rv.Index(i).Interface(), false, depth) {
			case KindString, KindNumber, KindBool, KindNull:
			default:
				return KindUnsupported
			}
		}
		return KindList
	case reflect.Map:
		return KindMap
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return KindNull
		}
		if depth >= maxPointerDepth {
			return KindUnsupported
		}
		return classify(rv.Elem().Interface(), allowList, depth+1)
	default:
		return KindUnsupported
	}
}

// Policy decides what happens to values Statsig cannot represent.
type Policy int

const (
	// Passthrough forwards every value uninspected.
	Passthrough Policy = iota
	// Reject fails the evaluation with an UnsupportedError.
	Reject
	// Drop omits the value from the user's custom fields.
	Drop
)

// String returns string representation of policy
func (p Policy) String() string {
	switch p {
	case Passthrough:
		return "passthrough"
	case Reject:
		return "reject"
	case Drop:
		return "drop"
	default:
		return "unknown"
	}
}

// ParsePolicy parses a policy name, case-insensitively.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "passthrough":
		return Passthrough, nil
	case "reject":
		return Reject, nil
	case "drop":
		return Drop, nil
	default:
		return Passthrough, fmt.Errorf("unknown attribute policy %q (must be 'passthrough', 'reject' or 'drop')", s)
	}
}

// UnsupportedError reports an attribute whose value Statsig cannot represent.
type UnsupportedError struct {
	Key  string
	Kind Kind
	Type string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("attribute %q has unsupported %s value of type %s", e.Key, e.Kind, e.Type)
}

// Apply copies attrs into a new map according to the policy. It returns the
// keys that were dropped, sorted. Reject reports the first offending key in
// lexical order.
func Apply(attrs map[string]any, policy Policy) (map[string]any, []string, error) {
	out := make(map[string]any, len(attrs))
	if policy == Passthrough {
		for k, v := range attrs {
			out[k] = v
		}
		return out, nil, nil
	}

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var dropped []string
	for _, k := range keys {
		v := attrs[k]
		kind := Classify(v)
		if kind.Representable() {
			out[k] = v
			continue
		}

		if policy == Reject {
			return nil, nil, &UnsupportedError{Key: k, Kind: kind, Type: fmt.Sprintf("%T", v)}
		}
		dropped = append(dropped, k)
	}

	return out, dropped, nil
}
