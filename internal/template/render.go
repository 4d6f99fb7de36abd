// Package template substitutes contact fields into message templates.
// Placeholders are written as {FIELD}, matching the column names of the
// uploaded contact CSV.
package template

import "strings"

// Render replaces every {FIELD} occurrence in tmpl with the corresponding
// value from fields. Fields without a placeholder are ignored; placeholders
// without a matching field are left verbatim. Rendering is pure.
func Render(tmpl string, fields map[string]string) string {
	out := tmpl
	for key, value := range fields {
		placeholder := "{" + key + "}"
		if strings.Contains(out, placeholder) {
			out = strings.ReplaceAll(out, placeholder, value)
		}
	}
	return out
}
