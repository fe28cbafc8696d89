package comments

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Field is an ordered list of candidate keys for one logical field. The API
// has renamed most fields at least once; the first present key wins.
type Field []string

var (
	FieldID         = Field{"cid", "id"}
	FieldCreateTime = Field{"create_time", "createTime"}
	FieldDiggCount  = Field{"digg_count", "diggCount", "like_count"}
	FieldText       = Field{"text"}
	FieldUser       = Field{"user", "user_info", "userInfo"}

	FieldNickname = Field{"nickname", "nickName"}
	FieldUID      = Field{"uid", "id"}
	FieldUniqueID = Field{"unique_id", "uniqueId", "secUid"}
)

// Valid unix range for year 1 through 9999.
const (
	minEpoch = -62135596800
	maxEpoch = 253402300799
)

// Lookup returns the value of the first candidate key that is present in m.
// Empty values (nil, "", zero numbers, false, empty arrays and objects) do
// not count as present.
func (f Field) Lookup(m map[string]any) (any, bool) {
	if m == nil {
		return nil, false
	}
	for _, k := range f {
		v, ok := m[k]
		if !ok || isEmpty(v) {
			continue
		}
		return v, true
	}
	return nil, false
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case bool:
		return !val
	case json.Number:
		f, err := val.Float64()
		return err == nil && f == 0
	case float64:
		return val == 0
	case int:
		return val == 0
	case int64:
		return val == 0
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	default:
		return false
	}
}

// lookupObject returns the first candidate value that is a non-empty object.
func (f Field) lookupObject(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	for _, k := range f {
		if obj, ok := m[k].(map[string]any); ok && len(obj) > 0 {
			return obj
		}
	}
	return nil
}

func (f Field) String(m map[string]any) string {
	v, ok := f.Lookup(m)
	if !ok {
		return ""
	}
	return stringify(v)
}

// Normalize maps a raw API comment onto the canonical schema. It never fails:
// missing or malformed fields fall back to their zero value.
func Normalize(raw map[string]any) Comment {
	createTime, _ := FieldCreateTime.Lookup(raw)
	digg, _ := FieldDiggCount.Lookup(raw)

	user := FieldUser.lookupObject(raw)

	return Comment{
		CID:        FieldID.String(raw),
		CreateTime: ISOTime(createTime),
		DiggCount:  LikeCount(digg),
		Text:       strings.TrimSpace(FieldText.String(raw)),
		User: Author{
			Nickname: FieldNickname.String(user),
			UID:      FieldUID.String(user),
			UniqueID: FieldUniqueID.String(user),
		},
	}
}

// NormalizeAll normalizes items in order.
func NormalizeAll(items []map[string]any) []Comment {
	out := make([]Comment, 0, len(items))
	for _, it := range items {
		out = append(out, Normalize(it))
	}
	return out
}

// ISOTime converts an epoch-seconds value to an ISO-8601 UTC string.
//
// Integers and digit strings are taken as seconds. RFC 3339 strings are
// re-rendered in UTC. Anything else, including fractional seconds, maps to
// the epoch.
func ISOTime(v any) string {
	return time.Unix(epochSeconds(v), 0).UTC().Format(time.RFC3339)
}

func epochSeconds(v any) int64 {
	var sec int64
	switch val := v.(type) {
	case nil:
		return 0
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return 0
		}
		sec = n
	case string:
		s := strings.TrimSpace(val)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			sec = n
		} else if t, err := time.Parse(time.RFC3339, s); err == nil {
			sec = t.Unix()
		} else {
			return 0
		}
	case float64:
		if val != math.Trunc(val) || math.IsInf(val, 0) {
			return 0
		}
		if val < minEpoch || val > maxEpoch {
			return 0
		}
		sec = int64(val)
	case int:
		sec = int64(val)
	case int64:
		sec = val
	case int32:
		sec = int64(val)
	default:
		return 0
	}
	if sec < minEpoch || sec > maxEpoch {
		return 0
	}
	return sec
}

// LikeCount coerces a raw like count. Only values whose string form is made
// entirely of ASCII digits are accepted; everything else is 0.
func LikeCount(v any) int64 {
	if v == nil {
		return 0
	}
	s := stringify(v)
	if !isDigits(s) {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
