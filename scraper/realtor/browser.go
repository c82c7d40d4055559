package realtor

import (
	"context"
	"net/url"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"

	"realestate-compare/config"
	"realestate-compare/models"
	"realestate-compare/utils"
)

const mapSearchURL = "https://www.realtor.ca/map"

// BrowserScraper drives a headless Chrome through the Realtor.ca map search. It
// is the fallback when the JSON API refuses requests.
type BrowserScraper struct {
	cfg    *config.Config
	logger *utils.Logger
	retry  *utils.RetryConfig
}

// NewBrowser creates a ready-to-use BrowserScraper.
func NewBrowser(cfg *config.Config, logger *utils.Logger) *BrowserScraper {
	return &BrowserScraper{
		cfg:    cfg,
		logger: logger,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// Scrape searches location and collects up to maxResults listing cards,
// following the result pagination.
func (s *BrowserScraper) Scrape(ctx context.Context, location string, filter SearchFilter, maxResults int) ([]*models.RawListing, error) {
	s.logger.Info("[browser] Starting scrape — location: %q, limit %d", location, maxResults)

	chromeBin := findChromeBinary(s.cfg.ChromeBin)
	s.logger.Info("[browser] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(userAgent),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	timeout := time.Duration(s.cfg.BrowserTimeoutSec) * time.Second
	pageDelay := time.Duration(s.cfg.ScrapeDelayMs) * time.Millisecond

	var listings []*models.RawListing
	seen := utils.NewKeySet()
	err := s.retry.Do(ctx, "open-search", func() error {
		runCtx, cancel := context.WithTimeout(browserCtx, timeout)
		defer cancel()
		return chromedp.Run(runCtx,
			chromedp.ActionFunc(func(ctx context.Context) error {
				if err := network.Enable().Do(ctx); err != nil {
					return err
				}
				if err := network.SetExtraHTTPHeaders(network.Headers(browserHeaders())).Do(ctx); err != nil {
					return err
				}
				_, err := page.AddScriptToEvaluateOnNewDocument(
					`Object.defineProperty(navigator, 'webdriver', {get: () => undefined})`).Do(ctx)
				return err
			}),
			chromedp.Navigate(searchURL(location, filter)),
			chromedp.WaitReady(".cardCon", chromedp.ByQuery),
		)
	})
	if err != nil {
		return nil, eris.Wrap(err, "browser: open search")
	}

	for pageNum := 1; ; pageNum++ {
		var html string
		runCtx, cancel := context.WithTimeout(browserCtx, timeout)
		err := chromedp.Run(runCtx,
			chromedp.Sleep(pageDelay),
			chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		)
		cancel()
		if err != nil {
			s.logger.Error("[browser] Page %d failed: %v", pageNum, err)
			break
		}

		cards, err := ParseCards(html)
		if err != nil {
			s.logger.Error("[browser] Page %d parse failed: %v", pageNum, err)
			break
		}
		added := 0
		for _, c := range cards {
			if key := c.MLSNumber + "|" + c.Address; !seen.Add(key) {
				continue
			}
			listings = append(listings, c)
			added++
			if maxResults > 0 && len(listings) >= maxResults {
				break
			}
		}
		s.logger.Info("[browser] Page %d done — %d new cards, %d so far", pageNum, added, len(listings))

		if added == 0 || (maxResults > 0 && len(listings) >= maxResults) {
			break
		}

		var moved bool
		runCtx, cancel = context.WithTimeout(browserCtx, timeout)
		err = chromedp.Run(runCtx, chromedp.Evaluate(`
			(function() {
				var next = document.querySelector('.paginationNext');
				if (!next || next.classList.contains('disabled')) return false;
				next.click();
				return true;
			})()
		`, &moved))
		cancel()
		if err != nil || !moved {
			break
		}
	}

	s.logger.Info("[browser] Scrape complete — total raw listings: %d", len(listings))
	return listings, nil
}

// ParseCards extracts listing cards from a rendered result page.
func ParseCards(html string) ([]*models.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, eris.Wrap(err, "browser: parse html")
	}

	var out []*models.RawListing
	doc.Find(".cardCon").Each(func(_ int, card *goquery.Selection) {
		address := cleanText(card.Find(".listingCardAddress, .address").First().Text())
		if address == "" {
			return
		}
		out = append(out, &models.RawListing{
			Address:   address,
			RawPrice:  cleanText(card.Find(".listingCardPrice").First().Text()),
			Bedrooms:  cleanText(card.Find(".listingCardIconNum.propertyIcon-Beds").First().Text()),
			Bathrooms: cleanText(card.Find(".listingCardIconNum.propertyIcon-Baths").First().Text()),
			MLSNumber: mlsFromCard(card),
			Source:    source,
			ScrapedAt: time.Now(),
		})
	})
	return out, nil
}

func mlsFromCard(card *goquery.Selection) string {
	if mls, ok := card.Attr("data-mls"); ok && mls != "" {
		return strings.TrimSpace(mls)
	}
	text := cleanText(card.Find(".listingCardMLS").First().Text())
	if i := strings.LastIndex(text, ":"); i >= 0 {
		text = text[i+1:]
	}
	return strings.TrimSpace(text)
}

func searchURL(location string, filter SearchFilter) string {
	frag := url.Values{}
	frag.Set("view", "list")
	frag.Set("GeoName", location)
	if filter.PriceMin > 0 {
		frag.Set("PriceMin", strconv.Itoa(filter.PriceMin))
	}
	if filter.PriceMax > 0 {
		frag.Set("PriceMax", strconv.Itoa(filter.PriceMax))
	}
	if filter.BedroomsMin > 0 {
		frag.Set("BedRange", strconv.Itoa(filter.BedroomsMin)+"-0")
	}
	return mapSearchURL + "#" + frag.Encode()
}

func browserHeaders() map[string]any {
	return map[string]any{
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-CA,en;q=0.9",
		"Referer":         "https://www.realtor.ca/",
	}
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// findChromeBinary locates Chrome/Chromium; configured wins.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
