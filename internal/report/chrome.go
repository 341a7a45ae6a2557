package report

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const chromeRenderTimeout = 30 * time.Second

// chromeOptions starts a throwaway headless browser; CHROME_PATH selects the binary
func chromeOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("headless", true),
	)
	if path := os.Getenv("CHROME_PATH"); path != "" {
		opts = append(opts, chromedp.ExecPath(path))
	}
	return opts
}

// loadHTML replaces the blank page's document with the report markup
func loadHTML(htmlContent string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}
		return page.SetDocumentContent(tree.Frame.ID, htmlContent).Do(ctx)
	})
}

// printPDF prints the current page, A4 with backgrounds
func printPDF(out *[]byte) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		buf, _, err := page.PrintToPDF().
			WithPrintBackground(true).
			WithPaperWidth(8.27).
			WithPaperHeight(11.69).
			Do(ctx)
		if err != nil {
			return err
		}
		*out = buf
		return nil
	})
}

// renderHTMLToPDF prints a report document to outputPath with headless Chrome.
// Nothing is written unless rendering succeeds.
func renderHTMLToPDF(ctx context.Context, htmlContent string, outputPath string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("chrome rendering skipped: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, chromeRenderTimeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromeOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var pdf []byte
	if err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		loadHTML(htmlContent),
		chromedp.WaitReady("body"),
		printPDF(&pdf),
	); err != nil {
		return fmt.Errorf("chrome rendering failed: %w", err)
	}

	if err := os.WriteFile(outputPath, pdf, 0644); err != nil {
		return fmt.Errorf("failed to write PDF file: %w", err)
	}
	return nil
}
