package export

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/iwvelando/payment-plan/internal/schedule"
	"github.com/iwvelando/payment-plan/pkg/constants"
	"github.com/iwvelando/payment-plan/pkg/output"
	"go.uber.org/zap"
)

const (
	defaultBrowserTimeout = 30 * time.Second
	viewportWidth         = 720
	viewportHeight        = 1280
)

var chromePaths = []string{
	"/usr/bin/chromium",
	"/usr/bin/chromium-browser",
	"/usr/bin/google-chrome",
	"/usr/bin/google-chrome-stable",
	"/snap/bin/chromium",
}

// BrowserRenderer screenshots the HTML panel in a headless Chrome.
type BrowserRenderer struct {
	logger     *zap.Logger
	chromePath string
	scale      int
	timeout    time.Duration
}

// NewBrowserRenderer creates a renderer backed by headless Chrome. An empty
// chromePath falls back to CHROME_PATH and then to common install locations.
func NewBrowserRenderer(logger *zap.Logger, chromePath string, scale int, timeout time.Duration) *BrowserRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if scale < 1 {
		scale = constants.DefaultExportScale
	}
	if timeout <= 0 {
		timeout = defaultBrowserTimeout
	}
	return &BrowserRenderer{logger: logger, chromePath: chromePath, scale: scale, timeout: timeout}
}

// detectChromePath checks CHROME_PATH first, then common installation paths.
func detectChromePath() string {
	if chromePath := os.Getenv("CHROME_PATH"); chromePath != "" {
		if _, err := os.Stat(chromePath); err == nil {
			return chromePath
		}
	}
	for _, path := range chromePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Render loads the plan panel into a blank page and captures the panel element.
func (b *BrowserRenderer) Render(ctx context.Context, result *schedule.Result) ([]byte, error) {
	if result == nil {
		return nil, ErrNoResult
	}

	html, err := output.HTMLPanel(result)
	if err != nil {
		return nil, fmt.Errorf("failed to render panel HTML: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.NoSandbox)
	chromePath := b.chromePath
	if chromePath == "" {
		chromePath = detectChromePath()
	}
	if chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	} else {
		b.logger.Warn("no Chrome executable found, letting chromedp auto-detect",
			zap.String("op", "export.BrowserRenderer.Render"),
		)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	selector := "#" + output.PanelElementID
	var buf []byte
	err = chromedp.Run(browserCtx,
		chromedp.EmulateViewport(viewportWidth, viewportHeight, chromedp.EmulateScale(float64(b.scale))),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Screenshot(selector, &buf, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to capture panel screenshot: %w", err)
	}

	b.logger.Debug("captured panel screenshot",
		zap.String("op", "export.BrowserRenderer.Render"),
		zap.String("chromePath", chromePath),
		zap.Int("bytes", len(buf)),
	)
	return buf, nil
}
