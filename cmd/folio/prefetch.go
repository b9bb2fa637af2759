package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mmcdole/folio/internal/domain"
	"github.com/mmcdole/folio/internal/eventloop"
	"github.com/mmcdole/folio/internal/preview"
	"golang.org/x/term"
)

// clearProgressLine clears the progress line from the terminal
const clearProgressLine = "\r\033[K"

// prefetchResult is one project's terminal outcome
type prefetchResult struct {
	err      error
	duration time.Duration
}

// runPrefetch downloads every missing preview, one at a time, without
// visibility gating. Progress redraws in place on a terminal and prints
// one line per event otherwise.
func runPrefetch(
	ctx context.Context,
	projects []domain.Project,
	assets domain.AssetStore,
	fetcher domain.Fetcher,
	out io.Writer,
	logger *slog.Logger,
) error {
	loop := eventloop.New()
	defer loop.Close()

	tty := false
	if f, ok := out.(*os.File); ok {
		tty = term.IsTerminal(int(f.Fd()))
	}

	var fetched, cached, failed int
	for _, p := range projects {
		if !p.HasPreview() {
			continue
		}
		if _, ok := assets.GetAsset(p.ID, p.PreviewURL); ok {
			fmt.Fprintf(out, "✓ %s (cached)\n", p.GetTitle())
			cached++
			continue
		}
		if ctx.Err() != nil {
			break
		}

		res := prefetchOne(ctx, p, assets, fetcher, loop, out, tty, logger)
		if tty {
			fmt.Fprint(out, clearProgressLine)
		}
		switch {
		case res.err == nil:
			fmt.Fprintf(out, "✓ %s (%s)\n", p.GetTitle(), res.duration.Round(time.Millisecond))
			fetched++
		case errors.Is(res.err, domain.ErrCancelled):
			fmt.Fprintf(out, "◌ %s (cancelled)\n", p.GetTitle())
		default:
			fmt.Fprintf(out, "✗ %s: %v\n", p.GetTitle(), res.err)
			failed++
		}
	}

	fmt.Fprintf(out, "\n%d fetched, %d cached, %d failed\n", fetched, cached, failed)
	if ctx.Err() != nil {
		return domain.ErrCancelled
	}
	if failed > 0 {
		return fmt.Errorf("%d previews failed", failed)
	}
	return nil
}

func prefetchOne(
	ctx context.Context,
	p domain.Project,
	assets domain.AssetStore,
	fetcher domain.Fetcher,
	loop *eventloop.Loop,
	out io.Writer,
	tty bool,
	logger *slog.Logger,
) prefetchResult {
	done := make(chan prefetchResult, 1)
	last := -1

	ctrl := preview.NewController(p.PreviewURL, fetcher, loop, preview.Callbacks{
		OnProgress: func(percent int) {
			if tty {
				fmt.Fprintf(out, "\r%s %3d%%", p.GetTitle(), percent)
				return
			}
			// Line mode: only report every 25%
			if step := percent / 25; step != last {
				last = step
				fmt.Fprintf(out, "  %s %d%%\n", p.GetTitle(), percent)
			}
		},
		OnSuccess: func(info preview.SuccessInfo) {
			err := assets.SaveAsset(&domain.PreviewAsset{
				ProjectID:   p.ID,
				SourceURL:   p.PreviewURL,
				ContentType: info.ContentType,
				DataURI:     info.Data,
				FetchedAt:   time.Now(),
			})
			done <- prefetchResult{err: err, duration: info.Duration}
		},
		OnCancel: func(info preview.CancelInfo) {
			done <- prefetchResult{err: domain.ErrCancelled, duration: info.Duration}
		},
		OnError: func(err error) {
			done <- prefetchResult{err: err}
		},
	}, preview.ControllerOptions{Parent: ctx, Logger: logger})

	ctrl.Start()
	return <-done
}
