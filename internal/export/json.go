package export

import (
	"bytes"
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"

	"thirdcoast.systems/tiktok-comments/internal/scraper"
	"thirdcoast.systems/tiktok-comments/internal/videoid"
	"thirdcoast.systems/tiktok-comments/pkg/comments"
)

const sourceName = "TikTok"

type Metadata struct {
	GeneratedAt   string                    `json:"generated_at"`
	Source        string                    `json:"source"`
	TotalVideos   int                       `json:"total_videos"`
	TotalComments int                       `json:"total_comments"`
	CommentLimit  int                       `json:"comment_limit"`
	RunID         string                    `json:"run_id"`
	Sources       map[string]scraper.Source `json:"sources"`
	VideoIDs      map[string]string         `json:"video_ids"`
}

type Document struct {
	Metadata Metadata   `json:"metadata"`
	Results  resultList `json:"results"`
}

// resultList marshals as a JSON object whose keys keep input order.
type resultList []scraper.Result

func (rl resultList) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, r := range rl {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(r.URL); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		cs := r.Comments
		if cs == nil {
			cs = []comments.Comment{}
		}
		if err := enc.Encode(cs); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// NewDocument builds the JSON export document for batch.
func NewDocument(batch scraper.BatchResult, commentLimit int, generatedAt time.Time) Document {
	meta := Metadata{
		GeneratedAt:   generatedAt.UTC().Format(time.RFC3339),
		Source:        sourceName,
		TotalVideos:   len(batch.Results),
		TotalComments: batch.TotalComments(),
		CommentLimit:  commentLimit,
		RunID:         uuid.NewString(),
		Sources:       make(map[string]scraper.Source, len(batch.Results)),
		VideoIDs:      make(map[string]string),
	}
	for _, r := range batch.Results {
		meta.Sources[r.URL] = r.Source
		if r.AwemeID != "" {
			meta.VideoIDs[r.URL] = videoid.VideoUUID(videoid.CanonicalDomainOf(r.URL), r.AwemeID).String()
		}
	}
	return Document{Metadata: meta, Results: resultList(batch.Results)}
}

func WriteJSON(w io.Writer, batch scraper.BatchResult, commentLimit int, generatedAt time.Time) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(NewDocument(batch, commentLimit, generatedAt))
}
