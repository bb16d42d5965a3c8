package collectors

import (
	"context"
	"encoding/xml"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/RecoveryAshes/SiteMapRank/internal/fetch"
	"github.com/RecoveryAshes/SiteMapRank/internal/models"
	"github.com/RecoveryAshes/SiteMapRank/internal/utils"
)

// SitemapNamespace sitemaps.org标准命名空间
const SitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// sitemapIndex 站点地图索引 (子项为其他站点地图的URL)
type sitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Sitemaps []sitemapRef `xml:"sitemap"`
}

type sitemapRef struct {
	Loc string `xml:"loc"`
}

// urlSet 叶子站点地图 (子项为页面URL)
type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// SitemapCollector 站点地图收集器
// 把一个站点地图URL(可能是索引)展开为候选页面列表
type SitemapCollector struct {
	fetcher *fetch.Fetcher

	// skipProducts 电商模式下跳过商品分支和商品URL
	skipProducts bool

	// skippedProducts 被跳过的商品URL计数
	skippedProducts int
}

// NewSitemapCollector 创建收集器
func NewSitemapCollector(fetcher *fetch.Fetcher, skipProducts bool) *SitemapCollector {
	return &SitemapCollector{
		fetcher:      fetcher,
		skipProducts: skipProducts,
	}
}

// SkippedProducts 本次收集跳过的商品URL数量
func (sc *SitemapCollector) SkippedProducts() int {
	return sc.skippedProducts
}

// Collect 收集站点地图中的全部候选页面
// 根站点地图的错误直接返回; 索引的子分支错误被隔离(记录后继续兄弟分支),
// 仅403封禁(BlockedError)会向上传播并终止整个运行
func (sc *SitemapCollector) Collect(ctx context.Context, sitemapURL string) ([]*models.PageCandidate, error) {
	return sc.collect(ctx, sitemapURL, false, true)
}

func (sc *SitemapCollector) collect(ctx context.Context, sitemapURL string, isPost bool, isRoot bool) ([]*models.PageCandidate, error) {
	utils.Infof("获取站点地图: %s", sitemapURL)

	body, err := sc.fetchDocument(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	// 索引和叶子共用同一个入口, 先按索引解析
	var index sitemapIndex
	if err := xml.Unmarshal(body, &index); err == nil {
		return sc.collectIndex(ctx, sitemapURL, index)
	}

	var set urlSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return nil, &models.MalformedSitemapError{URL: sitemapURL, Reason: "XML解析失败: " + err.Error()}
	}

	return sc.collectLeaf(sitemapURL, set, isPost), nil
}

// fetchDocument 获取并解码站点地图文档
// 解码后的内容必须以XML声明开头, 否则判定为格式错误 —
// 这能暴露被封禁或重定向后返回HTML错误页的常见情况
func (sc *SitemapCollector) fetchDocument(ctx context.Context, sitemapURL string) ([]byte, error) {
	resp, err := sc.fetcher.Fetch(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	body := fetch.DecodeBody(resp.Header, resp.Body)

	trimmed := strings.TrimSpace(string(body))
	if !strings.HasPrefix(trimmed, "<?xml") {
		reason := "内容不是XML"
		if strings.Contains(strings.ToLower(trimmed), "<html") {
			reason = "收到HTML页面而非XML站点地图 (可能是404/重定向/拒绝访问页)"
		}
		return nil, &models.MalformedSitemapError{URL: sitemapURL, Reason: reason}
	}

	return body, nil
}

// collectIndex 展开站点地图索引
// 子分支按稳定优先级排序: 含"page"的在前, 其次既不含"page"也不含"post"的,
// 含"post"的最后。这只影响处理顺序, 不影响最终哪些页面被评分
func (sc *SitemapCollector) collectIndex(ctx context.Context, indexURL string, index sitemapIndex) ([]*models.PageCandidate, error) {
	utils.Infof("发现站点地图索引, 包含%d个子站点地图", len(index.Sitemaps))

	subs := make([]string, 0, len(index.Sitemaps))
	for _, ref := range index.Sitemaps {
		loc := strings.TrimSpace(ref.Loc)
		if loc != "" {
			subs = append(subs, loc)
		}
	}

	sort.SliceStable(subs, func(i, j int) bool {
		return sitemapPriority(subs[i]) < sitemapPriority(subs[j])
	})

	var pages []*models.PageCandidate
	for _, subURL := range subs {
		if sc.skipProducts && models.IsProductSitemap(subURL) {
			utils.Infof("跳过商品站点地图分支: %s", subURL)
			continue
		}

		isPost := strings.Contains(strings.ToLower(subURL), "post")
		subPages, err := sc.collect(ctx, subURL, isPost, false)
		if err != nil {
			// 403封禁终止整个运行, 其他分支错误隔离后继续
			var blocked *models.BlockedError
			if errors.As(err, &blocked) {
				return nil, err
			}
			utils.Warnf("子站点地图处理失败 [%s]: %v, 继续处理兄弟分支", subURL, err)
			continue
		}
		pages = append(pages, subPages...)
	}

	return pages, nil
}

// collectLeaf 解析叶子站点地图的页面条目
func (sc *SitemapCollector) collectLeaf(sitemapURL string, set urlSet, isPost bool) []*models.PageCandidate {
	pages := make([]*models.PageCandidate, 0, len(set.URLs))

	for _, entry := range set.URLs {
		loc := strings.TrimSpace(entry.Loc)
		if loc == "" {
			continue
		}

		if sc.skipProducts && models.IsProductPage(loc) {
			sc.skippedProducts++
			continue
		}

		page := &models.PageCandidate{
			URL:     loc,
			LastMod: strings.TrimSpace(entry.LastMod),
			IsPost:  isPost,
		}

		if freq := strings.ToLower(strings.TrimSpace(entry.ChangeFreq)); freq != "" {
			page.ChangeFreq = models.ChangeFreq(freq)
		}
		if prio := strings.TrimSpace(entry.Priority); prio != "" {
			if v, err := strconv.ParseFloat(prio, 64); err == nil {
				page.Priority = &v
			}
		}

		pages = append(pages, page)
	}

	utils.Infof("站点地图解析完成 [%s]: %d个页面", sitemapURL, len(pages))
	return pages
}

// sitemapPriority 子站点地图的访问优先级: page=1, 其他=2, post=3
func sitemapPriority(sitemapURL string) int {
	u := strings.ToLower(sitemapURL)
	switch {
	case strings.Contains(u, "page"):
		return 1
	case strings.Contains(u, "post"):
		return 3
	default:
		return 2
	}
}
