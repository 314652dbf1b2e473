package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/botbase/internal/extract"
	"github.com/xxxsen/botbase/internal/model"
	appErr "github.com/xxxsen/botbase/internal/pkg/errors"
)

const (
	crawlMinPageChars = 100
	crawlMaxBodySize  = 2 << 20
)

type CrawlService struct {
	ingest   *IngestService
	client   *http.Client
	maxPages int
}

type CrawlResult struct {
	PagesIngested int            `json:"pages_ingested"`
	Sources       []IngestResult `json:"sources"`
}

func NewCrawlService(ingest *IngestService, maxPages int) *CrawlService {
	if maxPages <= 0 {
		maxPages = 10
	}
	return &CrawlService{
		ingest:   ingest,
		client:   &http.Client{Timeout: 15 * time.Second},
		maxPages: maxPages,
	}
}

// Crawl fetches the page at rawURL plus the same-host pages it links to
// (depth 1) and ingests each page with enough text as an html source.
// Pages that fail to fetch or hold too little text are skipped, not fatal;
// the crawl only errors when the root page itself is unreachable.
func (s *CrawlService) Crawl(ctx context.Context, bot *model.Bot, rawURL string) (*CrawlResult, error) {
	root, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (root.Scheme != "http" && root.Scheme != "https") || root.Host == "" {
		return nil, fmt.Errorf("%w: invalid url", appErr.ErrInvalid)
	}
	logger := logutil.GetLogger(ctx).With(zap.String("bot_id", bot.ID), zap.String("url", root.String()))

	body, err := s.fetch(ctx, root.String())
	if err != nil {
		return nil, err
	}
	result := &CrawlResult{}
	visited := map[string]struct{}{canonical(root): {}}
	s.ingestPage(ctx, bot, root.String(), body, result)

	for _, link := range s.extractLinks(root, body) {
		if len(visited) >= s.maxPages {
			break
		}
		key := canonical(link)
		if _, seen := visited[key]; seen {
			continue
		}
		visited[key] = struct{}{}
		page, err := s.fetch(ctx, link.String())
		if err != nil {
			logger.Warn("skip linked page", zap.String("link", link.String()), zap.Error(err))
			continue
		}
		s.ingestPage(ctx, bot, link.String(), page, result)
	}
	logger.Info("crawl finished", zap.Int("pages_ingested", result.PagesIngested))
	return result, nil
}

func (s *CrawlService) fetch(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "botbase-crawler/1.0")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, crawlMaxBodySize))
}

func (s *CrawlService) ingestPage(ctx context.Context, bot *model.Bot, pageURL string, body []byte, result *CrawlResult) {
	extracted, err := extract.Extract(model.SourceTypeHTML, body)
	if err != nil || len(extracted.Text) < crawlMinPageChars {
		logutil.GetLogger(ctx).Debug("skip page with too little text", zap.String("url", pageURL))
		return
	}
	res, err := s.ingest.IngestRaw(ctx, bot, pageURL, model.SourceTypeHTML, body)
	if err != nil {
		logutil.GetLogger(ctx).Warn("ingest crawled page failed",
			zap.String("url", pageURL), zap.Error(err))
		return
	}
	result.PagesIngested++
	result.Sources = append(result.Sources, *res)
}

// extractLinks returns absolute same-host links found on the page.
func (s *CrawlService) extractLinks(root *url.URL, body []byte) []*url.URL {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil
	}
	var links []*url.URL
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "javascript:") {
			return
		}
		link, err := root.Parse(href)
		if err != nil {
			return
		}
		if link.Scheme != "http" && link.Scheme != "https" {
			return
		}
		if link.Host != root.Host {
			return
		}
		link.Fragment = ""
		links = append(links, link)
	})
	return links
}

func canonical(u *url.URL) string {
	clone := *u
	clone.Fragment = ""
	return strings.TrimSuffix(clone.String(), "/")
}
