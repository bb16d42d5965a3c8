package collectors

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("解析测试HTML失败: %v", err)
	}
	return doc
}

func TestExtractNavigation_StructuralSelectors(t *testing.T) {
	doc := parseHTML(t, `<html><body>
		<header><nav>
			<a href="/services">Services</a>
			<a href="/about/">About</a>
			<a href="https://example.com/contact#form">Contact</a>
		</nav></header>
	</body></html>`)

	nav, err := ExtractNavigation(doc, "https://example.com/")
	if err != nil {
		t.Fatalf("ExtractNavigation() error = %v", err)
	}

	for _, want := range []string{
		"https://example.com/services",
		"https://example.com/about",
		"https://example.com/contact",
	} {
		if !nav.Contains(want) {
			t.Errorf("导航集合应包含 %s", want)
		}
	}
	if nav.Len() != 3 {
		t.Errorf("Len() = %d, want 3", nav.Len())
	}
}

func TestExtractNavigation_TermRecall(t *testing.T) {
	// 链接不在任何导航结构里, 但可见文字命中预期导航词
	doc := parseHTML(t, `<html><body>
		<div class="random-wrapper">
			<a href="/platform">Platform</a>
			<a href="/random">Something Else</a>
		</div>
	</body></html>`)

	nav, err := ExtractNavigation(doc, "https://example.com/")
	if err != nil {
		t.Fatalf("ExtractNavigation() error = %v", err)
	}

	if !nav.Contains("https://example.com/platform") {
		t.Error("文字召回应找到Platform链接")
	}
	if nav.Contains("https://example.com/random") {
		t.Error("未命中导航词的链接不应入选")
	}
}

func TestExtractNavigation_SameOriginOnly(t *testing.T) {
	doc := parseHTML(t, `<html><body><nav>
		<a href="https://example.com/services">Services</a>
		<a href="https://other.com/services">External Services</a>
	</nav></body></html>`)

	nav, err := ExtractNavigation(doc, "https://example.com/")
	if err != nil {
		t.Fatalf("ExtractNavigation() error = %v", err)
	}

	if !nav.Contains("https://example.com/services") {
		t.Error("同源链接应入选")
	}
	if nav.Contains("https://other.com/services") {
		t.Error("跨域链接不应入选")
	}
}

func TestExtractNavigation_Denylist(t *testing.T) {
	doc := parseHTML(t, `<html><body><nav>
		<a href="mailto:hi@example.com">Email</a>
		<a href="tel:+8610000000">Phone</a>
		<a href="javascript:void(0)">JS</a>
		<a href="#">Anchor</a>
		<a href="/whitepaper.pdf">Whitepaper</a>
		<a href="/assets/app.js">Script</a>
		<a href="/wp-admin/options.php">Admin</a>
		<a href="/login">Login</a>
		<a href="/services">Services</a>
	</nav></body></html>`)

	nav, err := ExtractNavigation(doc, "https://example.com/")
	if err != nil {
		t.Fatalf("ExtractNavigation() error = %v", err)
	}

	if nav.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (只有/services), 集合: %v", nav.Len(), nav.URLs())
	}
	if !nav.Contains("https://example.com/services") {
		t.Error("正常链接应入选")
	}
}

func TestExtractNavigation_HomepageAliasExcluded(t *testing.T) {
	doc := parseHTML(t, `<html><body><nav>
		<a href="/">Home</a>
		<a href="/index.html">Home</a>
		<a href="/home">Home</a>
		<a href="/about">About</a>
	</nav></body></html>`)

	nav, err := ExtractNavigation(doc, "https://example.com/")
	if err != nil {
		t.Fatalf("ExtractNavigation() error = %v", err)
	}

	if nav.Len() != 1 {
		t.Errorf("Len() = %d, want 1, 集合: %v", nav.Len(), nav.URLs())
	}
	if !nav.Contains("https://example.com/about") {
		t.Error("非首页链接应保留")
	}
}

func TestExtractNavigation_RelativeResolution(t *testing.T) {
	doc := parseHTML(t, `<html><body><nav>
		<a href="services/repair">Repair</a>
	</nav></body></html>`)

	nav, err := ExtractNavigation(doc, "https://example.com/")
	if err != nil {
		t.Fatalf("ExtractNavigation() error = %v", err)
	}
	if !nav.Contains("https://example.com/services/repair") {
		t.Errorf("相对链接应解析为绝对URL, 集合: %v", nav.URLs())
	}
}
