package extract

import (
	"context"
	"crypto/tls"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/time/rate"

	"github.com/RecoveryAshes/SiteMapRank/internal/fetch"
	"github.com/RecoveryAshes/SiteMapRank/internal/models"
	"github.com/RecoveryAshes/SiteMapRank/internal/utils"
)

// maxMainTextLen 主内容区文本截断长度, 汇总文件不需要全文
const maxMainTextLen = 4000

// mainContentSelectors 主内容区选择器, 按优先级排列
var mainContentSelectors = []string{
	"main", "article", "[role=\"main\"]",
	".content", "#content", ".main-content", "#main-content",
}

// Extractor 排序结果的内容抓取器
// 对主清单页面做限速的逐页访问, 提取结构化文本供汇总报告使用
type Extractor struct {
	collector *colly.Collector
	limiter   *rate.Limiter

	mu      sync.Mutex
	results map[string]*models.PageContent
}

// NewExtractor 创建内容抓取器
// requestDelay是固定的页面间隔(秒), 排序引擎自身不做任何阻塞延迟
func NewExtractor(fetchTimeout, requestDelay int) *Extractor {
	c := colly.NewCollector()
	c.SetClient(&http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
		Timeout: time.Duration(fetchTimeout) * time.Second,
	})
	c.UserAgent = fetch.DefaultUserAgent

	e := &Extractor{
		collector: c,
		results:   make(map[string]*models.PageContent),
	}

	// 每requestDelay秒放行一个请求; 0表示不限速
	if requestDelay > 0 {
		e.limiter = rate.NewLimiter(rate.Every(time.Duration(requestDelay)*time.Second), 1)
	}

	c.OnHTML("html", func(el *colly.HTMLElement) {
		content := extractContent(el.DOM)
		content.URL = el.Request.URL.String()
		e.store(content)
	})
	c.OnError(func(resp *colly.Response, err error) {
		e.store(&models.PageContent{
			URL:   resp.Request.URL.String(),
			Error: err.Error(),
		})
	})

	return e
}

// ExtractAll 逐页抓取主清单的内容
// 单页失败记入结果但不中断其余页面
func (e *Extractor) ExtractAll(ctx context.Context, pages []*models.PageCandidate) []*models.PageContent {
	utils.Infof("开始抓取%d个页面的内容", len(pages))

	bar := progressbar.NewOptions(len(pages),
		progressbar.OptionSetDescription("抓取页面内容"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			utils.Warnf("内容抓取被取消: %v", err)
			break
		}
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				break
			}
		}

		if err := e.collector.Visit(page.URL); err != nil {
			e.store(&models.PageContent{URL: page.URL, Error: err.Error()})
		}
		_ = bar.Add(1)
	}
	e.collector.Wait()

	// 按清单顺序回填得分并组装结果
	contents := make([]*models.PageContent, 0, len(pages))
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, page := range pages {
		content, ok := e.results[page.URL]
		if !ok {
			content = &models.PageContent{URL: page.URL, Error: "未收到响应"}
		}
		content.Score = page.Score
		contents = append(contents, content)
	}

	utils.Infof("内容抓取完成: %d/%d个页面成功", countOK(contents), len(contents))
	return contents
}

func (e *Extractor) store(content *models.PageContent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.results[content.URL] = content
}

// extractContent 从文档提取标题/H1/描述/小节标题/主内容/图片alt
func extractContent(doc *goquery.Selection) *models.PageContent {
	content := &models.PageContent{
		Title: cleanText(doc.Find("title").First().Text()),
		H1:    cleanText(doc.Find("h1").First().Text()),
	}

	if desc, ok := doc.Find("meta[name=\"description\"]").Attr("content"); ok {
		content.MetaDescription = cleanText(desc)
	}

	doc.Find("h2, h3").Each(func(_ int, sel *goquery.Selection) {
		if text := cleanText(sel.Text()); text != "" {
			content.Headings = append(content.Headings, text)
		}
	})

	content.MainText = extractMainText(doc)

	doc.Find("img[alt]").Each(func(_ int, sel *goquery.Selection) {
		if alt, ok := sel.Attr("alt"); ok {
			if alt = cleanText(alt); alt != "" {
				content.ImageAlts = append(content.ImageAlts, alt)
			}
		}
	})

	return content
}

// extractMainText 按选择器优先级提取主内容区文本, 没有命中时退回body
func extractMainText(doc *goquery.Selection) string {
	for _, selector := range mainContentSelectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			if text := cleanText(sel.Text()); text != "" {
				return truncate(text, maxMainTextLen)
			}
		}
	}
	return truncate(cleanText(doc.Find("body").Text()), maxMainTextLen)
}

// cleanText 压缩空白
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

func countOK(contents []*models.PageContent) int {
	n := 0
	for _, c := range contents {
		if c.Error == "" {
			n++
		}
	}
	return n
}
