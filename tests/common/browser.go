// Package common holds helpers shared by the browser and container suites.
package common

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// BrowserEnv enables the chromedp suite when set to a non-empty value.
const BrowserEnv = "KRXALERT_TEST_BROWSER"

type BrowserConfig struct {
	Headless bool
	Timeout  time.Duration
}

func DefaultBrowserConfig() *BrowserConfig {
	return &BrowserConfig{
		Headless: os.Getenv("KRXALERT_TEST_HEADFUL") == "",
		Timeout:  30 * time.Second,
	}
}

// RequireBrowser skips t unless the browser suite is enabled.
func RequireBrowser(t *testing.T) {
	t.Helper()
	if os.Getenv(BrowserEnv) == "" {
		t.Skipf("%s not set; skipping browser test", BrowserEnv)
	}
}

func NewBrowserContext(cfg *BrowserConfig) (context.Context, context.CancelFunc) {
	if cfg == nil {
		cfg = DefaultBrowserConfig()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(390, 844),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, ctxCancel := chromedp.NewContext(allocCtx)
	ctx, timeoutCancel := context.WithTimeout(ctx, cfg.Timeout)

	cancel := func() {
		timeoutCancel()
		ctxCancel()
		allocCancel()
	}
	return ctx, cancel
}

// JSErrorCollector records uncaught exceptions and console errors.
type JSErrorCollector struct {
	mu     sync.Mutex
	errors []string
}

func NewJSErrorCollector(ctx context.Context) *JSErrorCollector {
	c := &JSErrorCollector{}

	chromedp.ListenTarget(ctx, func(ev interface{}) {
		c.mu.Lock()
		defer c.mu.Unlock()

		switch e := ev.(type) {
		case *runtime.EventExceptionThrown:
			desc := e.ExceptionDetails.Text
			if e.ExceptionDetails.Exception != nil && e.ExceptionDetails.Exception.Description != "" {
				desc = e.ExceptionDetails.Exception.Description
			}
			c.errors = append(c.errors, fmt.Sprintf("EXCEPTION: %s", desc))

		case *runtime.EventConsoleAPICalled:
			if e.Type != runtime.APITypeError {
				return
			}
			var parts []string
			for _, arg := range e.Args {
				if arg.Value != nil {
					parts = append(parts, string(arg.Value))
				} else if arg.Description != "" {
					parts = append(parts, arg.Description)
				}
			}
			if msg := strings.Join(parts, " "); msg != "" && !strings.Contains(msg, "favicon") {
				c.errors = append(c.errors, fmt.Sprintf("console.error: %s", msg))
			}
		}
	})

	return c
}

func (c *JSErrorCollector) Errors() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.errors))
	copy(out, c.errors)
	return out
}

func NavigateAndWait(ctx context.Context, url string) error {
	return chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitVisible("body", chromedp.ByQuery),
	)
}
