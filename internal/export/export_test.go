package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"thirdcoast.systems/tiktok-comments/internal/scraper"
	"thirdcoast.systems/tiktok-comments/internal/videoid"
	"thirdcoast.systems/tiktok-comments/pkg/comments"
	"thirdcoast.systems/tiktok-comments/pkg/synthetic"
)

var fixedNow = time.Date(2024, 10, 3, 9, 5, 7, 0, time.UTC)

func sampleBatch() scraper.BatchResult {
	live := []comments.Comment{{
		CID:        "1",
		CreateTime: "2024-10-01T00:00:00Z",
		DiggCount:  5,
		Text:       "a <b> & c",
		User:       comments.Author{Nickname: "Nick", UID: "42", UniqueID: "nick"},
	}}
	synthURL := "https://www.tiktok.com/@x"
	return scraper.BatchResult{Results: []scraper.Result{
		{URL: "https://www.tiktok.com/@z/video/7234567890123456789", AwemeID: "7234567890123456789", Source: scraper.SourceLive, Comments: live},
		{URL: synthURL, Source: scraper.SourceSynthetic, Comments: synthetic.Generate(synthURL, 3)},
		{URL: "notaurl", Source: scraper.SourceFailed, Comments: []comments.Comment{}},
	}}
}

func TestFilename(t *testing.T) {
	require.Equal(t, "comments_20241003T090507Z.json", Filename(FormatJSON, fixedNow))
	require.Equal(t, "comments_20241003T090507Z.csv", Filename(FormatCSV, fixedNow.In(time.FixedZone("x", 3600))))
}

func TestWriteJSON_Structure(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleBatch(), 3, fixedNow))
	require.Contains(t, buf.String(), "\n  \"metadata\": {")
	require.Contains(t, buf.String(), "a <b> & c")

	var doc struct {
		Metadata map[string]any                `json:"metadata"`
		Results  map[string][]comments.Comment `json:"results"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	require.Equal(t, "2024-10-03T09:05:07Z", doc.Metadata["generated_at"])
	require.Equal(t, "TikTok", doc.Metadata["source"])
	require.EqualValues(t, 3, doc.Metadata["total_videos"])
	require.EqualValues(t, 3, doc.Metadata["comment_limit"])

	total := 0
	for _, cs := range doc.Results {
		total += len(cs)
	}
	require.EqualValues(t, total, doc.Metadata["total_comments"])
	require.Equal(t, 4, total)

	require.Len(t, doc.Results, 3)
	require.NotNil(t, doc.Results["notaurl"])
	require.Empty(t, doc.Results["notaurl"])

	sources := doc.Metadata["sources"].(map[string]any)
	require.Equal(t, "live", sources["https://www.tiktok.com/@z/video/7234567890123456789"])
	require.Equal(t, "synthetic", sources["https://www.tiktok.com/@x"])
	require.Equal(t, "failed", sources["notaurl"])

	ids := doc.Metadata["video_ids"].(map[string]any)
	require.Len(t, ids, 1)
	require.Equal(t, videoid.VideoUUID("tiktok.com", "7234567890123456789").String(),
		ids["https://www.tiktok.com/@z/video/7234567890123456789"])

	require.NotEmpty(t, doc.Metadata["run_id"])
}

func TestWriteJSON_KeepsInputOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleBatch(), 3, fixedNow))

	out := buf.String()
	results := out[strings.Index(out, `"results"`):]
	first := strings.Index(results, `"https://www.tiktok.com/@z/`)
	second := strings.Index(results, `"https://www.tiktok.com/@x"`)
	third := strings.Index(results, `"notaurl"`)
	require.True(t, first < second && second < third, "results out of input order")
}

func TestWriteCSV_Columns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleBatch()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Equal(t, []string{
		"cid", "create_time", "digg_count", "source", "text",
		"user.nickname", "user.uid", "user.unique_id", "video_url",
	}, records[0])
	require.Len(t, records, 1+4)
	require.Equal(t, []string{
		"1", "2024-10-01T00:00:00Z", "5", "live", "a <b> & c",
		"Nick", "42", "nick", "https://www.tiktok.com/@z/video/7234567890123456789",
	}, records[1])
	require.Equal(t, "synthetic", records[2][3])
}

func TestWriteCSV_NormalizesTextToNFC(t *testing.T) {
	batch := scraper.BatchResult{Results: []scraper.Result{{
		URL:      "https://www.tiktok.com/@z/video/1",
		Source:   scraper.SourceLive,
		Comments: []comments.Comment{{CID: "1", Text: "cafe\u0301"}},
	}}}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, batch))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Equal(t, "caf\u00e9", records[1][4])

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, batch, 1, fixedNow))
	require.Contains(t, buf.String(), "cafe\u0301")
}

func TestWriteCSV_NoRowsPlaceholder(t *testing.T) {
	var buf bytes.Buffer
	batch := scraper.BatchResult{Results: []scraper.Result{{URL: "notaurl", Source: scraper.SourceFailed}}}
	require.NoError(t, WriteCSV(&buf, batch))
	require.Equal(t, "info\nNo rows\n", buf.String())
}

func TestWrite_CreatesTimestampedFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")

	path, err := Write(sampleBatch(), Options{
		Dir:          dir,
		Format:       FormatCSV,
		CommentLimit: 3,
		Now:          func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	require.True(t, filepath.IsAbs(path))
	require.Equal(t, filepath.Join(dir, "comments_20241003T090507Z.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "cid,create_time,"))
}

func TestWrite_UnsupportedFormat(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	_, err := Write(sampleBatch(), Options{Dir: dir, Format: "xml"})
	require.Error(t, err)
	require.NoDirExists(t, dir)
}
