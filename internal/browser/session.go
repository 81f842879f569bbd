// Package browser manages the chromedp session used for the Salesforce login
// flow and implements the login driver consumed by the credential refresh.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"
)

// Session owns a chromedp browser context and its cancel stack.
type Session struct {
	ctx     context.Context
	cancels []context.CancelFunc
	logger  arbor.ILogger
}

// SessionOptions configures the browser session.
type SessionOptions struct {
	Headless bool
	Timeout  time.Duration
	Width    int
	Height   int
}

// DefaultSessionOptions returns the options used by the refresh flow.
func DefaultSessionOptions() SessionOptions {
	return SessionOptions{
		Headless: true,
		Timeout:  3 * time.Minute,
		Width:    1920,
		Height:   1080,
	}
}

// NewSession starts a browser and returns a session bound to it. Close must
// be called to release the browser.
func NewSession(parent context.Context, opts SessionOptions, logger arbor.ILogger) (*Session, error) {
	if opts.Width == 0 || opts.Height == 0 {
		opts.Width, opts.Height = 1920, 1080
	}
	if opts.Timeout == 0 {
		opts.Timeout = 3 * time.Minute
	}

	ctx, cancelTimeout := context.WithTimeout(parent, opts.Timeout)

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.WindowSize(opts.Width, opts.Height),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// Start the browser process eagerly so a missing Chrome binary fails here
	// rather than inside the login flow.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		cancelTimeout()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &Session{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{cancelBrowser, cancelAlloc, cancelTimeout},
		logger:  logger,
	}, nil
}

// Context returns the chromedp context for running actions.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Close releases the browser and all derived contexts.
func (s *Session) Close() {
	if err := chromedp.Cancel(s.ctx); err != nil && s.logger != nil {
		s.logger.Debug().Err(err).Msg("Browser cancel returned an error")
	}
	for _, cancel := range s.cancels {
		cancel()
	}
}
