package printing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cockroachdb/errors"

	"gulmohar/billing/internal/logger"
)

const (
	defaultRenderTimeout = 30 * time.Second

	// A4 in inches
	a4Width  = 8.27
	a4Height = 11.69
	margin   = 0.5
)

// PDFConverter turns a complete HTML document into PDF bytes.
type PDFConverter interface {
	HTMLToPDF(ctx context.Context, html string) ([]byte, error)
}

// ChromedpConfig configures the headless Chrome converter.
type ChromedpConfig struct {
	// RemoteURL points at a running Chrome DevTools endpoint. When empty a
	// local browser is launched.
	RemoteURL string
	NoSandbox bool
	Timeout   time.Duration
}

// ChromedpConverter prints HTML to PDF through the Chrome DevTools protocol.
type ChromedpConverter struct {
	config      ChromedpConfig
	log         *logger.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

func NewChromedpConverter(config ChromedpConfig, log *logger.Logger) *ChromedpConverter {
	if config.Timeout <= 0 {
		config.Timeout = defaultRenderTimeout
	}
	if log == nil {
		log = logger.NewNop()
	}

	c := &ChromedpConverter{config: config, log: log.Named("chromedp")}

	if config.RemoteURL != "" {
		c.allocCtx, c.allocCancel = chromedp.NewRemoteAllocator(context.Background(), config.RemoteURL)
		return c
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if config.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	c.allocCtx, c.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	return c
}

func (c *ChromedpConverter) HTMLToPDF(ctx context.Context, html string) ([]byte, error) {
	if strings.TrimSpace(html) == "" {
		return nil, errors.New("html content is empty")
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(c.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			c.log.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()

	// chromedp contexts derive from the allocator, so the caller's deadline
	// has to be enforced separately.
	stop := context.AfterFunc(ctx, browserCancel)
	defer stop()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(a4Width).
				WithPaperHeight(a4Height).
				WithMarginTop(margin).
				WithMarginBottom(margin).
				WithMarginLeft(margin).
				WithMarginRight(margin).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Wrapf(ctxErr, "pdf rendering aborted after %v", time.Since(start))
		}
		c.log.Errorw("chromedp rendering failed", "error", err)
		return nil, errors.Wrap(err, "chromedp run")
	}
	if len(pdf) == 0 {
		return nil, errors.New("generated pdf is empty")
	}

	c.log.Debugw("pdf rendered", "bytes", len(pdf), "duration", time.Since(start))
	return pdf, nil
}

// Close shuts the browser allocator down.
func (c *ChromedpConverter) Close() {
	if c.allocCancel != nil {
		c.allocCancel()
	}
}

var _ PDFConverter = (*ChromedpConverter)(nil)
