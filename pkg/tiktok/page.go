package tiktok

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

var (
	commentsKeys = []string{"comments", "comment_list"}
	cursorKeys   = []string{"cursor", "next_cursor"}
)

// Page is one decoded response from the comment-listing endpoint.
type Page struct {
	// Comments are the raw comment objects in server order.
	Comments []map[string]any
	// NextCursor is the server-provided cursor, nil when absent.
	NextCursor *int64
	HasMore    bool
}

// ParsePage extracts the comment list and paging fields from a decoded body.
func ParsePage(payload map[string]any) *Page {
	p := &Page{}

	for _, k := range commentsKeys {
		arr, ok := payload[k].([]any)
		if !ok || len(arr) == 0 {
			continue
		}
		p.Comments = make([]map[string]any, 0, len(arr))
		for _, it := range arr {
			if obj, ok := it.(map[string]any); ok {
				p.Comments = append(p.Comments, obj)
			}
		}
		break
	}

	// A zero or unparseable cursor means "no cursor", so the next key is tried.
	for _, k := range cursorKeys {
		if n, ok := toInt64(payload[k]); ok && n != 0 {
			p.NextCursor = &n
			break
		}
	}

	p.HasMore = truthy(payload["has_more"])
	return p
}

func toInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case json.Number:
		n, err := val.Int64()
		return n, err == nil
	case float64:
		if val != math.Trunc(val) {
			return 0, false
		}
		return int64(val), true
	case int:
		return int64(val), true
	case int64:
		return val, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case json.Number:
		f, err := val.Float64()
		return err == nil && f != 0
	case float64:
		return val != 0
	case int:
		return val != 0
	case int64:
		return val != 0
	case string:
		return val != ""
	default:
		return true
	}
}
