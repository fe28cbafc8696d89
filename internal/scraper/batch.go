package scraper

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"thirdcoast.systems/tiktok-comments/pkg/comments"
)

// BatchResult holds one Result per input URL, in input order.
type BatchResult struct {
	Results []Result
}

// Map returns url -> comments. Failed URLs map to an empty slice.
func (b BatchResult) Map() map[string][]comments.Comment {
	out := make(map[string][]comments.Comment, len(b.Results))
	for _, r := range b.Results {
		cs := r.Comments
		if cs == nil {
			cs = []comments.Comment{}
		}
		out[r.URL] = cs
	}
	return out
}

func (b BatchResult) TotalComments() int {
	n := 0
	for _, r := range b.Results {
		n += len(r.Comments)
	}
	return n
}

// Count returns how many results came from src.
func (b BatchResult) Count(src Source) int {
	n := 0
	for _, r := range b.Results {
		if r.Source == src {
			n++
		}
	}
	return n
}

// FetchAll fetches every URL with at most Concurrency fetches in flight.
//
// Per-URL failures never abort the batch. The returned error is non-nil only
// when ctx is cancelled; URLs not started by then are reported as failed.
// The client's session is closed before FetchAll returns.
func (s *Scraper) FetchAll(ctx context.Context, urls []string) (BatchResult, error) {
	defer s.client.Session().Close()

	results := make([]Result, len(urls))
	sem := semaphore.NewWeighted(int64(s.concurrency))
	g, gctx := errgroup.WithContext(ctx)

	for i, u := range urls {
		if err := sem.Acquire(gctx, 1); err != nil {
			for j := i; j < len(urls); j++ {
				results[j] = failedResult(urls[j], err)
			}
			break
		}

		i, u := i, u
		g.Go(func() error {
			defer sem.Release(1)

			res, err := s.FetchComments(gctx, u)
			switch {
			case err == nil:
				results[i] = res
				return nil
			case errors.Is(err, ErrInvalidURL):
				slog.Error("Failed to fetch comments", "url", u, "error", err)
				results[i] = res
				return nil
			default:
				results[i] = failedResult(u, err)
				return err
			}
		})
	}

	err := g.Wait()

	batch := BatchResult{Results: results}
	slog.Info("Batch finished",
		"urls", len(urls),
		"live", batch.Count(SourceLive),
		"synthetic", batch.Count(SourceSynthetic),
		"failed", batch.Count(SourceFailed),
		"comments", batch.TotalComments(),
	)
	if err == nil {
		err = ctx.Err()
	}
	return batch, err
}

func failedResult(url string, err error) Result {
	return Result{
		URL:      url,
		Source:   SourceFailed,
		Comments: []comments.Comment{},
		Reason:   err.Error(),
	}
}
