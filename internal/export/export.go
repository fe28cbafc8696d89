// Package export writes a batch of scraped comments to a timestamped JSON or
// CSV file.
package export

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"thirdcoast.systems/tiktok-comments/internal/scraper"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// filenameLayout is compact ISO-8601 in UTC.
const filenameLayout = "20060102T150405Z"

type Options struct {
	Dir          string
	Format       Format
	CommentLimit int
	// Now defaults to time.Now.
	Now func() time.Time
}

// Filename returns the export file name for a run started at t.
func Filename(format Format, t time.Time) string {
	return fmt.Sprintf("comments_%s.%s", t.UTC().Format(filenameLayout), format)
}

// Write exports batch into opts.Dir and returns the absolute path written.
func Write(batch scraper.BatchResult, opts Options) (string, error) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	ts := now().UTC()

	var encode func(io.Writer) error
	switch opts.Format {
	case FormatJSON:
		encode = func(w io.Writer) error { return WriteJSON(w, batch, opts.CommentLimit, ts) }
	case FormatCSV:
		encode = func(w io.Writer) error { return WriteCSV(w, batch) }
	default:
		return "", fmt.Errorf("unsupported output format %q", opts.Format)
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path, err := filepath.Abs(filepath.Join(opts.Dir, Filename(opts.Format, ts)))
	if err != nil {
		return "", fmt.Errorf("resolve output path: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create output file: %w", err)
	}

	bw := bufio.NewWriter(f)
	if err := encode(bw); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("encode %s: %w", opts.Format, err)
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write output file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close output file: %w", err)
	}

	attrs := []any{"path", path, "format", opts.Format}
	if info, err := os.Stat(path); err == nil {
		attrs = append(attrs, "size", humanize.Bytes(uint64(info.Size())))
	}
	slog.Info("Export written", attrs...)

	return path, nil
}
