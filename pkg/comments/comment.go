// Package comments holds the canonical comment record and the normalizer that
// maps raw TikTok API payloads onto it.
package comments

// Author is the embedded author record of a comment.
type Author struct {
	Nickname string `json:"nickname"`
	UID      string `json:"uid"`
	UniqueID string `json:"unique_id"`
}

// Comment is the export schema. Field names match the keys the TikTok web API
// uses for the canonical variant of each field.
type Comment struct {
	CID        string `json:"cid"`
	CreateTime string `json:"create_time"`
	DiggCount  int64  `json:"digg_count"`
	Text       string `json:"text"`
	User       Author `json:"user"`
}

// Raw returns c in the raw map shape the normalizer accepts, using the
// canonical key of every field.
func (c Comment) Raw() map[string]any {
	return map[string]any{
		"cid":         c.CID,
		"create_time": c.CreateTime,
		"digg_count":  c.DiggCount,
		"text":        c.Text,
		"user": map[string]any{
			"nickname":  c.User.Nickname,
			"uid":       c.User.UID,
			"unique_id": c.User.UniqueID,
		},
	}
}
