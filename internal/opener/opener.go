// Package opener opens URLs found in generated answers.
package opener

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pkg/browser"

	"github.com/nadzzz/voxestate/internal/config"
)

// Opener hands a URL to something that can display it.
type Opener interface {
	Name() string
	Open(ctx context.Context, url string) error
}

// New returns the opener selected by cfg.Backend.
func New(cfg config.OpenerConfig) (Opener, error) {
	switch cfg.Backend {
	case "browser", "":
		return NewBrowser(), nil
	case "log":
		return Log{}, nil
	default:
		return nil, fmt.Errorf("unknown opener backend %q", cfg.Backend)
	}
}

// Browser opens URLs in the host's default web browser.
type Browser struct {
	open func(url string) error
}

// NewBrowser creates a Browser backed by the system handler (xdg-open, open, start).
func NewBrowser() *Browser {
	return &Browser{open: browser.OpenURL}
}

// Name returns "browser".
func (b *Browser) Name() string { return "browser" }

// Open launches the browser. It does not wait for the page to load.
func (b *Browser) Open(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.open(url); err != nil {
		return fmt.Errorf("opening %s: %w", url, err)
	}
	return nil
}

// Log records URLs instead of opening them. Used on headless hosts.
type Log struct{}

// Name returns "log".
func (Log) Name() string { return "log" }

// Open logs the URL and never fails.
func (Log) Open(_ context.Context, url string) error {
	slog.Info("url ready to open", "url", url)
	return nil
}
