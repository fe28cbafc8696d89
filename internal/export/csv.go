package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"golang.org/x/text/unicode/norm"

	"thirdcoast.systems/tiktok-comments/internal/scraper"
)

// Every CSV row carries these next to the flattened comment fields.
const (
	columnVideoURL = "video_url"
	columnSource   = "source"
)

// WriteCSV writes one row per comment. Columns are the sorted union of all
// flattened keys, nested objects joined with '.'. Cell text is NFC-normalized
// for spreadsheet tools; the JSON export keeps the bytes the API sent. A batch
// without comments produces a single placeholder column so the file is never
// empty.
func WriteCSV(w io.Writer, batch scraper.BatchResult) error {
	var rows []map[string]string
	for _, r := range batch.Results {
		for _, c := range r.Comments {
			row := make(map[string]string)
			flatten("", c.Raw(), row)
			row[columnVideoURL] = r.URL
			row[columnSource] = string(r.Source)
			rows = append(rows, row)
		}
	}

	cw := csv.NewWriter(w)
	if len(rows) == 0 {
		_ = cw.Write([]string{"info"})
		_ = cw.Write([]string{"No rows"})
		cw.Flush()
		return cw.Error()
	}

	seen := make(map[string]struct{})
	var columns []string
	for _, row := range rows {
		for k := range row {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				columns = append(columns, k)
			}
		}
	}
	sort.Strings(columns)

	if err := cw.Write(columns); err != nil {
		return err
	}
	record := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			record[i] = row[col]
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func flatten(prefix string, m map[string]any, out map[string]string) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			flatten(key, nested, out)
			continue
		}
		out[key] = norm.NFC.String(fmt.Sprint(v))
	}
}
