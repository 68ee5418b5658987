// Package param holds the option bag passed from the command dispatcher to a
// venue client and the normalization applied to it before a request is built.
package param

import (
	"reflect"
	"strings"
)

// Bag maps option names to raw values as supplied on the command line.
// Absent options are simply not present; there is no null marker.
type Bag map[string]any

// Normalize returns a copy of bag with every empty value removed. The venue
// API treats an explicit empty field differently from an absent one (an empty
// price on a MARKET order is rejected), so empty values are dropped, never
// coerced. Zero and false are kept.
func Normalize(bag Bag) Bag {
	out := make(Bag, len(bag))
	for k, v := range bag {
		if isEmpty(v) {
			continue
		}
		out[k] = v
	}
	return out
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t) == ""
	case bool:
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
