package ingest

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/config"
	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/internal/entity"
	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/internal/metrics"
)

// crawlSource is the fallback strategy: fetch the listing page, extract
// detail links, and scrape each detail page for event fields.
type crawlSource struct {
	cfg     config.IngestConfig
	fetcher PageFetcher
}

func NewCrawlSource(cfg config.IngestConfig, fetcher PageFetcher) *crawlSource {
	return &crawlSource{cfg: cfg, fetcher: fetcher}
}

func (s *crawlSource) Name() string { return "crawl" }

// Fetch retries the listing fetch per the configured policy; individual
// detail pages are not retried. A failed detail page is logged and skipped,
// never fatal to the run.
func (s *crawlSource) Fetch(ctx context.Context) ([]entity.RawRecord, error) {
	attempts := s.cfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}
	var listing []byte
	err := Retry(ctx, attempts, defaultDur(s.cfg.Backoff, 500*time.Millisecond), defaultDur(s.cfg.MaxBackoff, 5*time.Second), func() error {
		b, err := s.fetcher.FetchPage(ctx, s.cfg.Crawl.ListingURL)
		if err != nil {
			return err
		}
		listing = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrUpstreamUnavailable, err)
	}

	links, err := s.extractLinks(listing)
	if err != nil {
		return nil, fmt.Errorf("%w: parse listing: %v", entity.ErrUpstreamUnavailable, err)
	}
	if len(links) == 0 {
		return nil, fmt.Errorf("%w: listing page contained no event links", entity.ErrUpstreamUnavailable)
	}
	logrus.Infof("crawl: found %d event links", len(links))

	concurrency := s.cfg.Crawl.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	jobs := make(chan string)
	var (
		mu      sync.Mutex
		records []entity.RawRecord
		wg      sync.WaitGroup
	)
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for link := range jobs {
				rec, err := s.fetchDetail(ctx, link)
				if err != nil {
					logrus.Warnf("crawl: skipping %s: %v", link, err)
					metrics.RecordsSkipped.WithLabelValues("detail_fetch").Inc()
					continue
				}
				mu.Lock()
				records = append(records, rec)
				mu.Unlock()
			}
		}()
	}
	for _, link := range links {
		select {
		case jobs <- link:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	return records, nil
}

// extractLinks collects the unique event detail URLs on the listing page,
// resolved against the listing URL and sorted for determinism.
func (s *crawlSource) extractLinks(listing []byte) ([]string, error) {
	doc, err := html.Parse(bytes.NewReader(listing))
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(s.cfg.Crawl.ListingURL)
	if err != nil {
		return nil, err
	}
	pattern := s.cfg.Crawl.LinkPattern
	if pattern == "" {
		pattern = "/event/"
	}

	seen := map[string]struct{}{}
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "a" {
			return
		}
		href := attrValue(n, "href")
		if href == "" || !strings.Contains(href, pattern) {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		resolved.Fragment = ""
		seen[resolved.String()] = struct{}{}
	})

	links := make([]string, 0, len(seen))
	for l := range seen {
		links = append(links, l)
	}
	sort.Strings(links)
	return links, nil
}

func (s *crawlSource) fetchDetail(ctx context.Context, link string) (entity.RawRecord, error) {
	body, err := s.fetcher.FetchPage(ctx, link)
	if err != nil {
		return entity.RawRecord{}, err
	}
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return entity.RawRecord{}, fmt.Errorf("parse detail page: %w", err)
	}

	sel := s.cfg.Crawl.Selectors
	rec := entity.RawRecord{
		ID:            idFromURL(link),
		SourceURL:     link,
		Title:         firstNonEmpty(classText(doc, sel.Title), tagText(doc, "h1"), tagText(doc, "title")),
		OrganizerName: classText(doc, sel.Organizer),
		DateTimeText:  firstNonEmpty(classText(doc, sel.DateTime), tagText(doc, "time")),
		VenueName:     classText(doc, sel.Venue),
		Description:   firstNonEmpty(classText(doc, sel.Description), metaContent(doc, "description")),
	}
	return rec, nil
}

// idFromURL takes the last non-empty path segment as the upstream id.
func idFromURL(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return path.Base(strings.TrimRight(u.Path, "/"))
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func attrValue(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// classText returns the collected text of the first element carrying class.
func classText(doc *html.Node, class string) string {
	if class == "" {
		return ""
	}
	var found *html.Node
	walk(doc, func(n *html.Node) {
		if found != nil || n.Type != html.ElementNode {
			return
		}
		for _, c := range strings.Fields(attrValue(n, "class")) {
			if c == class {
				found = n
				return
			}
		}
	})
	if found == nil {
		return ""
	}
	return collectText(found)
}

// tagText returns the collected text of the first element with the given tag.
func tagText(doc *html.Node, tag string) string {
	var found *html.Node
	walk(doc, func(n *html.Node) {
		if found == nil && n.Type == html.ElementNode && n.Data == tag {
			found = n
		}
	})
	if found == nil {
		return ""
	}
	return collectText(found)
}

func metaContent(doc *html.Node, name string) string {
	var content string
	walk(doc, func(n *html.Node) {
		if content != "" || n.Type != html.ElementNode || n.Data != "meta" {
			return
		}
		if attrValue(n, "name") == name || attrValue(n, "property") == "og:"+name {
			content = attrValue(n, "content")
		}
	})
	return content
}

func collectText(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
			sb.WriteString(" ")
		}
	})
	return strings.Join(strings.Fields(sb.String()), " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
