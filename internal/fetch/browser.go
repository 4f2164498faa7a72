// browser.go provides the headless-browser open-and-capture collaborator.
// The engine only decides which URL to send here; navigation details stay in
// this file. Requires Chrome/Chromium on the system.
package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// Capture holds the outcome of rendering a candidate URL in a real browser.
// The rendered HTML is fed back through the bot-wall detector; the
// screenshot is evidence for the human reviewer either way.
type Capture struct {
	FinalURL   string
	HTML       string
	Screenshot []byte
}

// OpenAndCapture navigates to url in a headless browser, waits for the page
// to settle, strips consent overlays that sit over booking widgets, and
// returns the final URL, rendered HTML, and a screenshot.
func OpenAndCapture(ctx context.Context, url string, timeout time.Duration) (*Capture, error) {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	out := &Capture{}

	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(3*time.Second),
		// Consent-manager overlays intercept clicks and hide booking
		// widgets; remove them before capturing.
		chromedp.Evaluate(`(() => {
			const blockers = document.querySelectorAll('.onetrust-pc-dark-filter, #onetrust-consent-sdk, .cookie-banner, #cookie-consent');
			blockers.forEach(el => el.remove());
		})()`, nil),
		chromedp.Sleep(1*time.Second),
		chromedp.Location(&out.FinalURL),
		chromedp.OuterHTML("html", &out.HTML),
		chromedp.CaptureScreenshot(&out.Screenshot),
	)
	if err != nil {
		return nil, fmt.Errorf("browser capture failed: %w", err)
	}

	return out, nil
}
