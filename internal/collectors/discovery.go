package collectors

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/RecoveryAshes/SiteMapRank/internal/fetch"
	"github.com/RecoveryAshes/SiteMapRank/internal/models"
	"github.com/RecoveryAshes/SiteMapRank/internal/utils"
)

// sitemapPaths 常见站点地图路径, 按尝试顺序排列
var sitemapPaths = []string{
	"/sitemap.xml",
	"/sitemap_index.xml",
	"/sitemaps.xml",
	"/sitemap1.xml",
	"/wp-sitemap.xml",
	"/sitemap/sitemap.xml",
}

// DiscoverSitemap 为站点URL定位站点地图
// 依次探测常见路径, 再查robots.txt的Sitemap声明, 都失败时退回默认路径
func DiscoverSitemap(ctx context.Context, fetcher *fetch.Fetcher, siteURL string) (string, error) {
	base := strings.TrimRight(siteURL, "/")

	// 直接给的就是站点地图URL时不再探测
	if strings.Contains(strings.ToLower(base), "sitemap") && strings.HasSuffix(strings.ToLower(base), ".xml") {
		return base, nil
	}

	utils.Infof("定位站点地图: %s", base)

	for _, path := range sitemapPaths {
		candidate := base + path
		resp, err := fetcher.Fetch(ctx, candidate)
		if err != nil {
			// 封禁直接终止, 其他错误换下一个路径
			var blocked *models.BlockedError
			if errors.As(err, &blocked) {
				return "", err
			}
			continue
		}
		body := fetch.DecodeBody(resp.Header, resp.Body)
		if strings.HasPrefix(strings.TrimSpace(string(body)), "<?xml") {
			utils.Infof("找到站点地图: %s", candidate)
			return candidate, nil
		}
	}

	// robots.txt中的Sitemap声明
	if fromRobots := sitemapFromRobots(ctx, fetcher, base); fromRobots != "" {
		utils.Infof("从robots.txt找到站点地图: %s", fromRobots)
		return fromRobots, nil
	}

	fallback := base + "/sitemap.xml"
	utils.Warnf("未找到站点地图, 使用默认路径: %s", fallback)
	return fallback, nil
}

// sitemapFromRobots 扫描robots.txt的Sitemap行
func sitemapFromRobots(ctx context.Context, fetcher *fetch.Fetcher, base string) string {
	resp, err := fetcher.Fetch(ctx, base+"/robots.txt")
	if err != nil {
		return ""
	}
	body := fetch.DecodeBody(resp.Header, resp.Body)
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToLower(line), "sitemap:") {
			return strings.TrimSpace(line[len("sitemap:"):])
		}
	}
	return ""
}

// DetectSiteType 从站点地图URL的形态检测站点类型
// 纯函数, 不发起网络请求
func DetectSiteType(sitemapURL string) models.SiteDetection {
	detection := models.SiteDetection{
		Type:       models.SiteTypeStandard,
		Confidence: "high",
	}

	parsed, err := url.Parse(sitemapURL)
	if err != nil {
		return detection
	}
	host := strings.ToLower(parsed.Host)
	full := strings.ToLower(sitemapURL)

	addIndicator := func(format string, args ...interface{}) {
		detection.Indicators = append(detection.Indicators, fmt.Sprintf(format, args...))
	}

	switch {
	case strings.Contains(host, "myshopify.com"):
		detection.Type = models.SiteTypeEcommerce
		detection.Platform = "Shopify"
		addIndicator("myshopify.com域名")

	case strings.Contains(full, "sitemap_products") || strings.Contains(full, "sitemap_collections"):
		detection.Type = models.SiteTypeEcommerce
		detection.Platform = "Shopify"
		addIndicator("Shopify风格站点地图命名")

	case strings.Contains(full, "product-sitemap"):
		detection.Type = models.SiteTypeEcommerce
		detection.Platform = "WooCommerce"
		addIndicator("WooCommerce风格站点地图命名")

	case strings.Contains(host, "mybigcommerce.com"):
		detection.Type = models.SiteTypeEcommerce
		detection.Platform = "BigCommerce"
		addIndicator("mybigcommerce.com域名")

	case strings.HasPrefix(host, "shop.") || strings.HasPrefix(host, "store."):
		detection.Type = models.SiteTypeEcommerce
		detection.Platform = "Unknown"
		detection.Confidence = "medium"
		addIndicator("shop/store子域名")
	}

	return detection
}
