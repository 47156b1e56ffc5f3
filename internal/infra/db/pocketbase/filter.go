package pocketbase

import (
	"strconv"
	"strings"
)

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Eq renders field="value" with the value quoted.
func Eq(field, value string) string {
	return field + "=" + `"` + quoteEscaper.Replace(value) + `"`
}

func EqBool(field string, v bool) string {
	return field + "=" + strconv.FormatBool(v)
}

// And joins the non-empty expressions with &&.
func And(exprs ...string) string {
	parts := make([]string, 0, len(exprs))
	for _, e := range exprs {
		if e != "" {
			parts = append(parts, e)
		}
	}
	return strings.Join(parts, " && ")
}
