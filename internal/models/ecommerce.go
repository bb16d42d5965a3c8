package models

import (
	"net/url"
	"strings"
)

// 电商URL分类谓词
// 站点地图收集阶段用于跳过商品分支, 评分阶段用于电商扩展规则

// IsProductSitemap 判断子站点地图URL是否为商品分支
func IsProductSitemap(sitemapURL string) bool {
	u := strings.ToLower(sitemapURL)
	return strings.Contains(u, "sitemap_products") ||
		strings.Contains(u, "product-sitemap") ||
		strings.Contains(u, "product_sitemap")
}

// IsProductPage 判断URL是否为商品详情页
func IsProductPage(rawURL string) bool {
	return pathContains(rawURL, "/products/")
}

// IsCollectionPage 判断URL是否为商品集合页 (分类/专题列表)
func IsCollectionPage(rawURL string) bool {
	return pathContains(rawURL, "/collections/")
}

// IsSystemPage 判断URL是否为电商系统页 (购物车/结算/账户/政策)
func IsSystemPage(rawURL string) bool {
	systemPaths := []string{
		"/cart", "/checkout", "/account", "/orders",
		"/policies/", "/password", "/challenge", "/gift_cards",
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := strings.ToLower(parsed.Path)
	for _, p := range systemPaths {
		if strings.HasSuffix(p, "/") {
			if strings.Contains(path, p) {
				return true
			}
		} else if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func pathContains(rawURL, fragment string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(parsed.Path), fragment)
}
