package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"thirdcoast.systems/tiktok-comments/internal/config"
	"thirdcoast.systems/tiktok-comments/internal/export"
	"thirdcoast.systems/tiktok-comments/internal/input"
	"thirdcoast.systems/tiktok-comments/internal/scraper"
	"thirdcoast.systems/tiktok-comments/pkg/tiktok"
)

const (
	exitInput     = 1
	exitFatal     = 2
	exitInterrupt = 130
)

// exitError carries the process exit code for a failed run.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

func newRootCmd() *cobra.Command {
	var settingsPath string

	cmd := &cobra.Command{
		Use:           "tiktok-comments",
		Short:         "Fetch TikTok comments for a list of video URLs and export them",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.BindFlags(cmd.Flags()); err != nil {
				return withCode(exitInput, err)
			}
			cfg, err := config.LoadConfig(cmd.Context(), settingsPath)
			if err != nil {
				return withCode(exitInput, fmt.Errorf("load config: %w", err))
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: cfg.SlogLevel(),
			})))

			path, err := run(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&settingsPath, "config", "", "settings file (json, yaml or toml)")
	f.String("input", "data/input_urls.txt", "file with one video URL per line")
	f.String("output-dir", "data", "directory for the export file")
	f.String("format", "json", "export format: json or csv")
	f.Int("limit", 100, "comments to fetch per video")
	f.Int("concurrency", 8, "videos fetched in parallel")
	f.String("proxy", "", "HTTP proxy URL")
	f.Int("timeout", 25, "per-request timeout in seconds")
	f.String("log-level", "info", "debug, info, warn or error")

	return cmd
}

// run loads the URLs, scrapes them and writes the export. It returns the
// absolute path of the written file.
func run(ctx context.Context, cfg *config.Config) (string, error) {
	urls, err := input.LoadURLs(cfg.InputFile)
	if err != nil {
		return "", withCode(exitInput, err)
	}
	slog.Info("Starting comment scrape", "urls", len(urls), "config", *cfg)

	session := tiktok.NewSession(tiktok.SessionOptions{
		Timeout: cfg.Timeout(),
		Proxy:   cfg.Proxy,
	})
	client := tiktok.NewClient(cfg.APIBaseURL, session)
	s := scraper.New(client, scraper.Options{
		CommentLimit: cfg.CommentLimit,
		Concurrency:  cfg.Concurrency,
	})

	batch, err := s.FetchAll(ctx, urls)
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return "", withCode(exitInterrupt, fmt.Errorf("interrupted: %w", err))
		}
		return "", withCode(exitFatal, err)
	}

	path, err := export.Write(batch, export.Options{
		Dir:          cfg.OutputDir,
		Format:       export.Format(cfg.OutputFormat),
		CommentLimit: cfg.CommentLimit,
	})
	if err != nil {
		return "", withCode(exitFatal, fmt.Errorf("export: %w", err))
	}
	return path, nil
}
