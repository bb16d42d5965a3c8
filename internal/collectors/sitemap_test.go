package collectors

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/RecoveryAshes/SiteMapRank/internal/fetch"
	"github.com/RecoveryAshes/SiteMapRank/internal/models"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>`

func leafSitemap(urls ...string) string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	for _, u := range urls {
		fmt.Fprintf(&sb, "<url><loc>%s</loc></url>", u)
	}
	sb.WriteString(`</urlset>`)
	return sb.String()
}

func indexSitemap(urls ...string) string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	for _, u := range urls {
		fmt.Fprintf(&sb, "<sitemap><loc>%s</loc></sitemap>", u)
	}
	sb.WriteString(`</sitemapindex>`)
	return sb.String()
}

// sitemapServer 按路径返回预置响应的测试服务器, 并记录访问顺序
type sitemapServer struct {
	*httptest.Server
	mu      sync.Mutex
	visited []string
	routes  map[string]string
}

func newSitemapServer() *sitemapServer {
	s := &sitemapServer{routes: make(map[string]string)}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.visited = append(s.visited, r.URL.Path)
		s.mu.Unlock()

		body, ok := s.routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(body))
	}))
	return s
}

func (s *sitemapServer) visitedPaths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.visited...)
}

func newTestCollector(skipProducts bool) *SitemapCollector {
	return NewSitemapCollector(fetch.NewFetcher(5*time.Second), skipProducts)
}

func TestSitemapCollector_LeafSitemap(t *testing.T) {
	s := newSitemapServer()
	defer s.Close()

	s.routes["/sitemap.xml"] = xmlHeader + `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
		<url><loc>https://example.com/</loc><lastmod>2025-08-01</lastmod><changefreq>Weekly</changefreq><priority>0.8</priority></url>
		<url><loc>https://example.com/about</loc></url>
	</urlset>`

	sc := newTestCollector(false)
	pages, err := sc.Collect(context.Background(), s.URL+"/sitemap.xml")
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("页面数 = %d, want 2", len(pages))
	}

	first := pages[0]
	if first.URL != "https://example.com/" {
		t.Errorf("URL = %s", first.URL)
	}
	if first.LastMod != "2025-08-01" {
		t.Errorf("LastMod = %s, want 2025-08-01", first.LastMod)
	}
	if first.ChangeFreq != models.FreqWeekly {
		t.Errorf("ChangeFreq = %s, 应小写化为weekly", first.ChangeFreq)
	}
	if first.Priority == nil || *first.Priority != 0.8 {
		t.Errorf("Priority = %v, want 0.8", first.Priority)
	}
	if first.IsPost {
		t.Error("叶子站点地图直接收集的页面不应标记为post")
	}
}

func TestSitemapCollector_IndexVisitOrder(t *testing.T) {
	s := newSitemapServer()
	defer s.Close()

	// 索引中故意打乱顺序: post在前, 其他在中, page在后
	s.routes["/sitemap.xml"] = indexSitemap(
		s.URL+"/sitemap_posts.xml",
		s.URL+"/sitemap_other.xml",
		s.URL+"/sitemap_pages.xml",
	)
	s.routes["/sitemap_posts.xml"] = leafSitemap("https://example.com/blog/a")
	s.routes["/sitemap_other.xml"] = leafSitemap("https://example.com/misc")
	s.routes["/sitemap_pages.xml"] = leafSitemap("https://example.com/about")

	sc := newTestCollector(false)
	pages, err := sc.Collect(context.Background(), s.URL+"/sitemap.xml")
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	// 访问顺序: page分支 -> 其他分支 -> post分支
	want := []string{"/sitemap.xml", "/sitemap_pages.xml", "/sitemap_other.xml", "/sitemap_posts.xml"}
	got := s.visitedPaths()
	if len(got) != len(want) {
		t.Fatalf("访问路径 = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("访问顺序[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	// post分支的页面被标记
	if len(pages) != 3 {
		t.Fatalf("页面数 = %d, want 3", len(pages))
	}
	for _, page := range pages {
		wantPost := strings.Contains(page.URL, "/blog/")
		if page.IsPost != wantPost {
			t.Errorf("页面%s的IsPost = %v, want %v", page.URL, page.IsPost, wantPost)
		}
	}
}

func TestSitemapCollector_SiblingBranchIsolation(t *testing.T) {
	s := newSitemapServer()
	defer s.Close()

	s.routes["/sitemap.xml"] = indexSitemap(
		s.URL+"/sitemap_pages.xml",
		s.URL+"/sitemap_broken.xml",
		s.URL+"/sitemap_other.xml",
	)
	s.routes["/sitemap_pages.xml"] = leafSitemap("https://example.com/about")
	s.routes["/sitemap_broken.xml"] = "<html><body>404 Not Found</body></html>"
	s.routes["/sitemap_other.xml"] = leafSitemap("https://example.com/misc")

	sc := newTestCollector(false)
	pages, err := sc.Collect(context.Background(), s.URL+"/sitemap.xml")
	if err != nil {
		t.Fatalf("子分支错误应被隔离, Collect() error = %v", err)
	}
	if len(pages) != 2 {
		t.Errorf("页面数 = %d, want 2 (损坏分支被跳过)", len(pages))
	}
}

func TestSitemapCollector_MalformedRoot(t *testing.T) {
	s := newSitemapServer()
	defer s.Close()

	s.routes["/sitemap.xml"] = "<html><body>Access Denied</body></html>"

	sc := newTestCollector(false)
	_, err := sc.Collect(context.Background(), s.URL+"/sitemap.xml")

	var malformed *models.MalformedSitemapError
	if !errors.As(err, &malformed) {
		t.Fatalf("错误类型 = %T, want *models.MalformedSitemapError", err)
	}
	if !strings.Contains(malformed.Reason, "HTML") {
		t.Errorf("Reason = %q, 应提示收到HTML页面", malformed.Reason)
	}
}

func TestSitemapCollector_BlockedPropagatesFromChild(t *testing.T) {
	blocked := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer blocked.Close()

	s := newSitemapServer()
	defer s.Close()

	s.routes["/sitemap.xml"] = indexSitemap(
		blocked.URL+"/sitemap_pages.xml",
		s.URL+"/sitemap_other.xml",
	)
	s.routes["/sitemap_other.xml"] = leafSitemap("https://example.com/misc")

	sc := newTestCollector(false)
	_, err := sc.Collect(context.Background(), s.URL+"/sitemap.xml")

	var blockedErr *models.BlockedError
	if !errors.As(err, &blockedErr) {
		t.Fatalf("403封禁应向上传播并终止整个收集, 错误 = %v", err)
	}
}

func TestSitemapCollector_GzipCompressedSitemap(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	gw.Write([]byte(leafSitemap("https://example.com/about")))
	gw.Close()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		w.Write(buf.Bytes())
	}))
	defer server.Close()

	sc := NewSitemapCollector(fetch.NewFetcher(5*time.Second), false)
	pages, err := sc.Collect(context.Background(), server.URL+"/sitemap.xml")
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(pages) != 1 || pages[0].URL != "https://example.com/about" {
		t.Errorf("pages = %v", pages)
	}
}

func TestSitemapCollector_SkipProducts(t *testing.T) {
	s := newSitemapServer()
	defer s.Close()

	s.routes["/sitemap.xml"] = indexSitemap(
		s.URL+"/sitemap_pages_1.xml",
		s.URL+"/sitemap_products_1.xml",
	)
	s.routes["/sitemap_pages_1.xml"] = leafSitemap(
		"https://shop.example.com/about",
		"https://shop.example.com/products/stray-item",
	)
	s.routes["/sitemap_products_1.xml"] = leafSitemap("https://shop.example.com/products/red-shirt")

	sc := newTestCollector(true)
	pages, err := sc.Collect(context.Background(), s.URL+"/sitemap.xml")
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	// 商品分支整个跳过, 页面分支里的散落商品URL也被过滤
	if len(pages) != 1 {
		t.Fatalf("页面数 = %d, want 1", len(pages))
	}
	if pages[0].URL != "https://shop.example.com/about" {
		t.Errorf("URL = %s", pages[0].URL)
	}
	for _, path := range s.visitedPaths() {
		if strings.Contains(path, "products") {
			t.Errorf("商品分支不应被访问: %s", path)
		}
	}
	if sc.SkippedProducts() != 1 {
		t.Errorf("SkippedProducts = %d, want 1", sc.SkippedProducts())
	}
}
