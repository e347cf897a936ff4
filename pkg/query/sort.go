package query

import "strings"

// SortField names a view field and its sort direction.
type SortField struct {
	Field      string `json:"field"`
	Descending bool   `json:"descending,omitempty"`
}

// ParseSortFields parses a comma-separated sort expression such as "name,-createdAt".
// A leading "-" selects descending order. Empty segments are skipped.
func ParseSortFields(s string) []SortField {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	fields := make([]SortField, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if strings.HasPrefix(part, "-") {
			name := strings.TrimSpace(part[1:])
			if name == "" {
				continue
			}
			fields = append(fields, SortField{Field: name, Descending: true})
			continue
		}

		fields = append(fields, SortField{Field: part})
	}

	return fields
}
