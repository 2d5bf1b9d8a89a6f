package plain

import (
	"fmt"
	"strings"
)

const DefaultPageSize = 10

const MaxPageSize = 100

// ListQuery selects documents of one collection, most recent first.
type ListQuery struct {
	Equal       map[string]string
	SearchField string
	SearchTerm  string
	LastSeenID  string
	Size        int
}

func (q ListQuery) WithEqual(field, value string) ListQuery {
	equal := make(map[string]string, len(q.Equal)+1)
	for k, v := range q.Equal {
		equal[k] = v
	}
	equal[field] = value
	q.Equal = equal
	return q
}

// CorrectDestruct validates the query and returns the effective page size.
func CorrectDestruct(query ListQuery) (ListQuery, int, error) {
	size := query.Size
	switch {
	case size < 0:
		return query, 0, fmt.Errorf("page size must not be negative: %d", size)
	case size == 0:
		size = DefaultPageSize
	case size > MaxPageSize:
		size = MaxPageSize
	}

	if query.SearchTerm != "" && query.SearchField == "" {
		return query, 0, fmt.Errorf("search term without field")
	}
	for field := range query.Equal {
		if field == "" || strings.HasPrefix(field, "$") {
			return query, 0, fmt.Errorf("invalid filter field: %q", field)
		}
	}
	if strings.HasPrefix(query.SearchField, "$") {
		return query, 0, fmt.Errorf("invalid search field: %q", query.SearchField)
	}

	query.Size = size
	return query, size, nil
}

// Matches reports whether fields satisfy the filters and the search of q.
func (q ListQuery) Matches(fields map[string]interface{}) bool {
	for field, want := range q.Equal {
		got, ok := fields[field].(string)
		if !ok || got != want {
			return false
		}
	}
	if q.SearchTerm != "" {
		got, _ := fields[q.SearchField].(string)
		if !strings.Contains(strings.ToLower(got), strings.ToLower(q.SearchTerm)) {
			return false
		}
	}
	return true
}
