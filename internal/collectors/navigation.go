package collectors

import (
	"bytes"
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/RecoveryAshes/SiteMapRank/internal/fetch"
	"github.com/RecoveryAshes/SiteMapRank/internal/models"
	"github.com/RecoveryAshes/SiteMapRank/internal/utils"
)

// navSelectors 导航结构选择器, 按特异性降序排列
// 覆盖常规导航、移动端菜单、下拉菜单、CMS和框架的常见命名
var navSelectors = []string{
	// 标准导航
	"header nav a", "nav a", "[role=\"navigation\"] a",
	".navigation a", ".nav a", ".menu a",
	".main-menu a", ".primary-menu a", ".navbar a",

	// 现代框架命名
	".nav-menu a", ".main-navigation a", ".primary-navigation a",
	".site-navigation a", ".top-menu a", ".header-menu a",

	// 移动端/汉堡菜单
	".mobile-menu a", ".hamburger-menu a", ".mobile-nav a",
	".off-canvas a", ".drawer-menu a",

	// 下拉和大型菜单
	".dropdown-menu a", ".mega-menu a", ".submenu a", ".sub-menu a",
	".menu-item a", ".nav-item a",

	// CMS常见命名 (WordPress/Drupal等)
	".menu-main a", ".menu-primary a", ".menu-header a",

	// Bootstrap等框架
	".navbar-nav a", ".nav-pills a", ".nav-tabs a", ".nav-link",

	// ID选择器
	"#navigation a", "#nav a", "#menu a", "#main-menu a",
	"#primary-menu a", "#site-navigation a", "#mobile-menu a",

	// 宽泛兜底: header区域和页脚导航
	"header a", ".header a", "#header a",
	".top-bar a", ".site-header a",
	"footer nav a", ".footer-nav a", ".footer-menu a",
	"header li a", ".menu li a", ".nav li a",
}

// expectedNavTerms 导航链接文字的召回兜底词表
// 结构选择器漏掉时, 按链接可见文字再扫一遍
var expectedNavTerms = []string{
	"Platform", "Customers", "Partnerships", "About Us", "About",
	"Services", "Solutions", "Products", "Company",
}

// navExcludePatterns 非内容链接排除规则
var navExcludePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^mailto:`),
	regexp.MustCompile(`(?i)^tel:`),
	regexp.MustCompile(`(?i)^javascript:`),
	regexp.MustCompile(`^#$`),
	regexp.MustCompile(`^\?`),
	regexp.MustCompile(`(?i)\.(pdf|doc|docx|zip|xls|xlsx|ppt|pptx)$`),
	regexp.MustCompile(`(?i)\.(js|css|xml|json)$`),
	regexp.MustCompile(`(?i)/wp-admin`),
	regexp.MustCompile(`(?i)/admin`),
	regexp.MustCompile(`(?i)/login$`),
	regexp.MustCompile(`(?i)/signin$`),
}

// NavigationProbe 首页导航探测器
type NavigationProbe struct {
	fetcher *fetch.Fetcher
}

// NewNavigationProbe 创建探测器
func NewNavigationProbe(fetcher *fetch.Fetcher) *NavigationProbe {
	return &NavigationProbe{fetcher: fetcher}
}

// Probe 抓取首页并提取主导航URL集合
// 探测失败不影响排序流程, 降级为空集合
func (np *NavigationProbe) Probe(ctx context.Context, homepageURL string) *models.NavigationSet {
	utils.Infof("分析首页导航: %s", homepageURL)

	resp, err := np.fetcher.Fetch(ctx, homepageURL)
	if err != nil {
		utils.Warnf("首页抓取失败, 导航集合降级为空: %v", err)
		return models.NewNavigationSet()
	}

	body := fetch.DecodeBody(resp.Header, resp.Body)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		utils.Warnf("首页解析失败, 导航集合降级为空: %v", err)
		return models.NewNavigationSet()
	}

	nav, err := ExtractNavigation(doc, homepageURL)
	if err != nil {
		utils.Warnf("导航提取失败, 降级为空集合: %v", err)
		return models.NewNavigationSet()
	}

	utils.Infof("导航提取完成: %d个导航页面", nav.Len())
	return nav
}

// ExtractNavigation 从首页文档提取导航URL集合
// 先跑结构选择器, 再按预期导航文字做召回兜底;
// 结果限定同源、规范化, 并排除资源/后台链接和首页自身的别名
func ExtractNavigation(doc *goquery.Document, homepageURL string) (*models.NavigationSet, error) {
	base, err := url.Parse(homepageURL)
	if err != nil {
		return nil, err
	}

	candidates := make(map[string]struct{})

	addHref := func(href string) {
		href = strings.TrimSpace(href)
		if href == "" || isExcludedHref(href) {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		full := base.ResolveReference(ref)
		// 只保留同源链接
		if full.Host != base.Host {
			return
		}
		clean := models.CanonicalURL(full.String())
		if clean == "" || isExcludedHref(clean) {
			return
		}
		candidates[clean] = struct{}{}
	}

	// 结构选择器
	for _, selector := range navSelectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if href, ok := sel.Attr("href"); ok {
				addHref(href)
			}
		})
	}

	// 召回兜底: 链接可见文字匹配预期导航词
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" || len(text) >= 100 {
			return
		}
		lower := strings.ToLower(text)
		for _, term := range expectedNavTerms {
			if strings.Contains(lower, strings.ToLower(term)) {
				if href, ok := sel.Attr("href"); ok {
					addHref(href)
				}
				break
			}
		}
	})

	// 排除首页自身及常见别名 (首页加分单独无条件处理)
	homepage := models.CanonicalURL(homepageURL)
	for _, alias := range []string{homepage, homepage + "/index", homepage + "/index.html", homepage + "/home"} {
		delete(candidates, alias)
	}

	nav := models.NewNavigationSet()
	for u := range candidates {
		nav.Add(u)
	}
	return nav, nil
}

// isExcludedHref 检查链接是否命中排除规则
func isExcludedHref(href string) bool {
	for _, pattern := range navExcludePatterns {
		if pattern.MatchString(href) {
			return true
		}
	}
	return false
}
