package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many items any page can hold.
	MaxLimit = 100
)

// Params holds cursor pagination inputs from controllers.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor points at the last item of the previous page.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// Page is one slice of a newest-first list.
type Page[T any] struct {
	Items      []T
	NextCursor string
}

// Meta is the response meta for a paged list.
type Meta struct {
	NextCursor string `json:"nextCursor,omitempty"`
	Count      int    `json:"count"`
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// EncodeCursor builds a base64 cursor string from the provided values.
func EncodeCursor(cursor Cursor) string {
	payload := fmt.Sprintf("%s|%s", cursor.CreatedAt.UTC().Format(time.RFC3339Nano), cursor.ID)
	return base64.URLEncoding.EncodeToString([]byte(payload))
}

// ParseCursor decodes the cursor string back into its components. An empty
// value yields nil.
func ParseCursor(value string) (*Cursor, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	decoded, err := base64.URLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		return nil, fmt.Errorf("invalid cursor format")
	}

	t, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid cursor timestamp: %w", err)
	}
	return &Cursor{CreatedAt: t, ID: parts[1]}, nil
}

// Paginate cuts one page out of items, which must already be sorted newest
// first. The page starts right after the cursor item. When that item is gone
// it starts at the first item older than the cursor.
func Paginate[T any](items []T, params Params, key func(T) Cursor) (Page[T], error) {
	cursor, err := ParseCursor(params.Cursor)
	if err != nil {
		return Page[T]{}, err
	}
	limit := NormalizeLimit(params.Limit)

	start := 0
	if cursor != nil {
		start = len(items)
		for i, item := range items {
			k := key(item)
			if k.ID == cursor.ID {
				start = i + 1
				break
			}
			if k.CreatedAt.Before(cursor.CreatedAt) {
				start = i
				break
			}
		}
	}

	end := min(start+limit, len(items))
	page := Page[T]{Items: items[start:end]}
	if end < len(items) {
		page.NextCursor = EncodeCursor(key(items[end-1]))
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	return page, nil
}
