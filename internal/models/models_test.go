package models

import (
	"testing"
)

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"普通URL不变", "https://example.com/about", "https://example.com/about"},
		{"去掉末尾斜杠", "https://example.com/about/", "https://example.com/about"},
		{"去掉fragment", "https://example.com/about#team", "https://example.com/about"},
		{"去掉查询串", "https://example.com/about?utm_source=x", "https://example.com/about"},
		{"fragment和查询串同时去掉", "https://example.com/p?a=1#b", "https://example.com/p"},
		{"根路径归约到host", "https://example.com/", "https://example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalURL(tt.raw); got != tt.want {
				t.Errorf("CanonicalURL() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPathDepth(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want int
	}{
		{"根路径", "https://example.com/", 0},
		{"无路径", "https://example.com", 0},
		{"一级", "https://example.com/about", 1},
		{"两级", "https://example.com/services/repair", 2},
		{"末尾斜杠不算一级", "https://example.com/services/repair/", 2},
		{"四级", "https://example.com/a/b/c/d", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PathDepth(tt.url); got != tt.want {
				t.Errorf("PathDepth() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsHomepagePath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want bool
	}{
		{"根路径", "/", true},
		{"空路径", "", true},
		{"index", "/index", true},
		{"index.html", "/index.html", true},
		{"home", "/home", true},
		{"homepage", "/homepage", true},
		{"main", "/main", true},
		{"about不是首页", "/about", false},
		{"maintenance不是首页", "/maintenance", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsHomepagePath(tt.path); got != tt.want {
				t.Errorf("IsHomepagePath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestNavigationSet(t *testing.T) {
	ns := NewNavigationSet("https://example.com/about/", "https://example.com/services?ref=nav")

	if ns.Len() != 2 {
		t.Errorf("Len() = %d, want 2", ns.Len())
	}
	// 查询时同样走规范化
	if !ns.Contains("https://example.com/about") {
		t.Error("规范化后的URL应该命中")
	}
	if !ns.Contains("https://example.com/services/") {
		t.Error("带末尾斜杠的URL应该命中")
	}
	if ns.Contains("https://example.com/contact") {
		t.Error("未加入的URL不应命中")
	}
}

func TestRankConfig_Validate(t *testing.T) {
	valid := RankConfig{PageCount: 10, FetchTimeout: 30, RequestDelay: 2}

	tests := []struct {
		name    string
		mutate  func(c *RankConfig)
		wantErr bool
	}{
		{"有效配置", func(c *RankConfig) {}, false},
		{"页面数过小", func(c *RankConfig) { c.PageCount = 0 }, true},
		{"页面数过大", func(c *RankConfig) { c.PageCount = 51 }, true},
		{"超时过小", func(c *RankConfig) { c.FetchTimeout = 0 }, true},
		{"超时过大", func(c *RankConfig) { c.FetchTimeout = 121 }, true},
		{"延迟为负", func(c *RankConfig) { c.RequestDelay = -1 }, true},
		{"并发数过大", func(c *RankConfig) { c.MaxWorkers = 65 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid
			tt.mutate(&config)
			if err := config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeSiteURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"补全协议", "example.com", "https://example.com", false},
		{"保留已有协议", "http://example.com", "http://example.com", false},
		{"去掉末尾斜杠", "https://example.com/", "https://example.com", false},
		{"空URL报错", "", "", true},
		{"纯空白报错", "   ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeSiteURL(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeSiteURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NormalizeSiteURL() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEcommercePredicates(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		product    bool
		collection bool
		system     bool
	}{
		{"商品详情页", "https://shop.example.com/products/red-shirt", true, false, false},
		{"集合页", "https://shop.example.com/collections/summer", false, true, false},
		{"购物车", "https://shop.example.com/cart", false, false, true},
		{"结算页", "https://shop.example.com/checkout/step-1", false, false, true},
		{"政策页", "https://shop.example.com/policies/refund-policy", false, false, true},
		{"普通页面", "https://shop.example.com/about", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsProductPage(tt.url); got != tt.product {
				t.Errorf("IsProductPage() = %v, want %v", got, tt.product)
			}
			if got := IsCollectionPage(tt.url); got != tt.collection {
				t.Errorf("IsCollectionPage() = %v, want %v", got, tt.collection)
			}
			if got := IsSystemPage(tt.url); got != tt.system {
				t.Errorf("IsSystemPage() = %v, want %v", got, tt.system)
			}
		})
	}
}

func TestIsProductSitemap(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"Shopify商品站点地图", "https://shop.example.com/sitemap_products_1.xml", true},
		{"WooCommerce商品站点地图", "https://shop.example.com/product-sitemap.xml", true},
		{"下划线变体", "https://shop.example.com/product_sitemap.xml", true},
		{"页面站点地图", "https://shop.example.com/sitemap_pages_1.xml", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsProductSitemap(tt.url); got != tt.want {
				t.Errorf("IsProductSitemap() = %v, want %v", got, tt.want)
			}
		})
	}
}
