package rpcflow

import (
	"strings"

	"github.com/ivankudzin/botlist/internal/rpc"
)

// ParseForm splits a form reply into raw field values. A line starting with
// `name:` for a field of spec opens that field; any other line continues the
// field opened before it. A single-field form also accepts bare text.
func ParseForm(spec rpc.Spec, text string) map[string]string {
	known := make(map[string]string, len(spec.Fields))
	for _, field := range spec.Fields {
		known[strings.ToLower(field.Name)] = field.Name
	}

	raw := make(map[string]string, len(spec.Fields))
	current := ""
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if name, value, ok := strings.Cut(line, ":"); ok {
			if field, exists := known[strings.ToLower(strings.TrimSpace(name))]; exists {
				current = field
				raw[field] = strings.TrimSpace(value)
				continue
			}
		}
		if current == "" {
			continue
		}
		if raw[current] == "" {
			raw[current] = strings.TrimSpace(line)
		} else {
			raw[current] += "\n" + strings.TrimRight(line, " \t")
		}
	}

	if len(raw) == 0 && len(spec.Fields) == 1 {
		raw[spec.Fields[0].Name] = strings.TrimSpace(text)
	}
	for name, value := range raw {
		raw[name] = strings.TrimSpace(value)
	}
	return raw
}
