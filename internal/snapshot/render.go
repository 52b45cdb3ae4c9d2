package snapshot

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Render flattens a resolved value into a single string. Top-level scalars
// render as their plain text; containers render depth-first with type tags
// and sorted mapping keys, embedding every nested scalar's text verbatim.
func Render(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	}
	var b strings.Builder
	renderTagged(&b, v)
	return b.String()
}

func renderTagged(b *strings.Builder, v any) {
	switch t := v.(type) {
	case nil:
		b.WriteString("Null")
	case string:
		b.WriteString(`String("`)
		b.WriteString(t)
		b.WriteString(`")`)
	case json.Number:
		b.WriteString("Number(")
		b.WriteString(t.String())
		b.WriteString(")")
	case float64:
		b.WriteString("Number(")
		b.WriteString(strconv.FormatFloat(t, 'f', -1, 64))
		b.WriteString(")")
	case bool:
		b.WriteString("Bool(")
		b.WriteString(strconv.FormatBool(t))
		b.WriteString(")")
	case []any:
		b.WriteString("Array [")
		for i, item := range t {
			if i > 0 {
				b.WriteString(", ")
			}
			renderTagged(b, item)
		}
		b.WriteString("]")
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		b.WriteString("Object {")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Quote(k))
			b.WriteString(": ")
			renderTagged(b, t[k])
		}
		b.WriteString("}")
	default:
		fmt.Fprintf(b, "%v", t)
	}
}
