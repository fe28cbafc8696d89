// Package scraper drives comment retrieval for video URLs: id extraction,
// short-link resolution, cursor paging and the synthetic fallback.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"thirdcoast.systems/tiktok-comments/internal/videoid"
	"thirdcoast.systems/tiktok-comments/pkg/comments"
	"thirdcoast.systems/tiktok-comments/pkg/synthetic"
	"thirdcoast.systems/tiktok-comments/pkg/tiktok"
)

// ErrInvalidURL is returned for inputs without an http(s) scheme. It is the
// only per-URL error that does not end in the synthetic fallback.
var ErrInvalidURL = errors.New("invalid url")

var errEmptyPage = errors.New("empty comments page")

// Source tells whether a result's comments are real or fabricated.
type Source string

const (
	SourceLive      Source = "live"
	SourceSynthetic Source = "synthetic"
	SourceFailed    Source = "failed"
)

// Result is the outcome for one input URL.
type Result struct {
	URL      string
	AwemeID  string
	Source   Source
	Comments []comments.Comment
	// Reason explains a synthetic or failed result.
	Reason string
}

type Options struct {
	// CommentLimit is the number of comments wanted per video.
	CommentLimit int
	// Concurrency bounds the number of URLs fetched at once.
	Concurrency int
}

type Scraper struct {
	client      *tiktok.Client
	limit       int
	concurrency int
}

func New(client *tiktok.Client, opts Options) *Scraper {
	if opts.CommentLimit < 1 {
		opts.CommentLimit = 1
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Scraper{
		client:      client,
		limit:       opts.CommentLimit,
		concurrency: opts.Concurrency,
	}
}

type state int

const (
	stateExtractingID state = iota
	stateResolvingLink
	statePaging
	stateFallback
)

// FetchComments retrieves up to the configured number of comments for rawURL.
//
// Any failure after URL validation is absorbed: the result then carries a full
// synthetic set keyed by rawURL and Source is SourceSynthetic. Only an invalid
// URL or a cancelled ctx produce an error.
func (s *Scraper) FetchComments(ctx context.Context, rawURL string) (Result, error) {
	res := Result{URL: rawURL, Comments: []comments.Comment{}}

	if !videoid.HasHTTPScheme(rawURL) {
		res.Source = SourceFailed
		res.Reason = "url must start with http:// or https://"
		return res, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	target := rawURL
	st := stateExtractingID
	for {
		switch st {
		case stateExtractingID:
			ex := videoid.Classify(target)
			switch ex.Kind {
			case videoid.KindFound:
				res.AwemeID = ex.AwemeID
				st = statePaging
			case videoid.KindNeedsResolution:
				st = stateResolvingLink
			default:
				res.Reason = "no video id in url"
				st = stateFallback
			}

		case stateResolvingLink:
			target = s.resolve(ctx, target)
			if err := ctx.Err(); err != nil {
				return res, err
			}
			if id, ok := videoid.ExtractAwemeID(target); ok {
				res.AwemeID = id
				st = statePaging
			} else {
				res.Reason = "short link did not resolve to a video id"
				st = stateFallback
			}

		case statePaging:
			collected, err := s.collect(ctx, res.AwemeID)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return res, ctxErr
				}
				res.Reason = err.Error()
				st = stateFallback
				continue
			}
			res.Source = SourceLive
			res.Comments = collected
			slog.Info("Fetched live comments", "url", rawURL, "aweme_id", res.AwemeID, "count", len(collected))
			return res, nil

		case stateFallback:
			res.Source = SourceSynthetic
			res.Comments = synthetic.Generate(rawURL, s.limit)
			slog.Warn("Live fetch unavailable, using synthetic comments",
				"url", rawURL,
				"aweme_id", res.AwemeID,
				"reason", res.Reason,
				"count", len(res.Comments),
			)
			return res, nil
		}
	}
}

func (s *Scraper) resolve(ctx context.Context, raw string) string {
	httpClient, err := s.client.Session().HTTPClient()
	if err != nil {
		slog.Warn("Failed to resolve short link", "url", raw, "error", err)
		return raw
	}
	return videoid.ResolveShortLink(ctx, httpClient, raw)
}

// collect pages through the comment list until the limit is reached or the
// server reports no more data. Partial results are discarded on error.
func (s *Scraper) collect(ctx context.Context, awemeID string) ([]comments.Comment, error) {
	remaining := s.limit
	var cursor int64
	out := make([]comments.Comment, 0, min(remaining, 256))

	for remaining > 0 {
		count := min(tiktok.MaxPageSize, remaining)
		page, err := s.client.FetchPage(ctx, awemeID, cursor, count)
		if err != nil {
			return nil, fmt.Errorf("fetch page at cursor %d: %w", cursor, err)
		}
		if len(page.Comments) == 0 {
			return nil, fmt.Errorf("%w at cursor %d", errEmptyPage, cursor)
		}

		items := page.Comments[:min(len(page.Comments), remaining)]
		out = append(out, comments.NormalizeAll(items)...)
		remaining -= len(items)

		if page.NextCursor == nil && !page.HasMore {
			break
		}
		next := cursor + int64(count)
		if page.NextCursor != nil {
			next = *page.NextCursor
		}
		if next <= cursor {
			slog.Warn("Comment cursor did not advance, stopping", "aweme_id", awemeID, "cursor", cursor, "next", next)
			break
		}
		cursor = next
		slog.Debug("Advancing comment cursor", "aweme_id", awemeID, "cursor", cursor, "remaining", remaining)
	}

	return out, nil
}
