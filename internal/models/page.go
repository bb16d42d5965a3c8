package models

import (
	"net/url"
	"strings"
)

// ChangeFreq 站点地图声明的页面更新频率
type ChangeFreq string

const (
	FreqAlways  ChangeFreq = "always"
	FreqHourly  ChangeFreq = "hourly"
	FreqDaily   ChangeFreq = "daily"
	FreqWeekly  ChangeFreq = "weekly"
	FreqMonthly ChangeFreq = "monthly"
	FreqYearly  ChangeFreq = "yearly"
	FreqNever   ChangeFreq = "never"
)

// PageCandidate 站点地图中发现的一个候选页面
// 由SitemapCollector创建, score/depth/标志位仅由评分和选择阶段修改,
// 排序完成后不再变更
type PageCandidate struct {
	URL             string     `json:"url"`                  // 绝对URL
	LastMod         string     `json:"lastmod,omitempty"`    // 最后修改时间(原始字符串)
	ChangeFreq      ChangeFreq `json:"changefreq,omitempty"` // 更新频率
	Priority        *float64   `json:"priority,omitempty"`   // 声明的优先级 (0.0-1.0)
	IsPost          bool       `json:"is_post"`              // 是否来自post子站点地图
	Score           float64    `json:"score"`                // 重要性评分
	Depth           int        `json:"depth"`                // 非空路径段数量
	InNavigation    bool       `json:"in_navigation"`        // 是否出现在主导航中
	HasKeywordMatch bool       `json:"has_keywords"`         // 是否命中关键词
	MatchedTerm     string     `json:"matched_term,omitempty"` // 命中的核心词汇(诊断用)
}

// Canonical 返回用于去重的规范化URL
func (p *PageCandidate) Canonical() string {
	return CanonicalURL(p.URL)
}

// Path 返回URL的路径部分(小写), 解析失败时返回空串
func (p *PageCandidate) Path() string {
	parsed, err := url.Parse(p.URL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Path)
}

// CanonicalURL 规范化URL: 去掉fragment和查询串, 去掉末尾斜杠
// 规范化结果作为整个排序流程的去重键
func CanonicalURL(raw string) string {
	if idx := strings.Index(raw, "#"); idx != -1 {
		raw = raw[:idx]
	}
	if idx := strings.Index(raw, "?"); idx != -1 {
		raw = raw[:idx]
	}
	return strings.TrimRight(raw, "/")
}

// PathDepth 计算路径中非空段的数量
func PathDepth(rawURL string) int {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return 0
	}
	depth := 0
	for _, part := range strings.Split(parsed.Path, "/") {
		if part != "" {
			depth++
		}
	}
	return depth
}

// IsHomepagePath 判断路径是否指向首页
// 匹配: "/", 空路径, "/index*", "/home*", "/main"
func IsHomepagePath(path string) bool {
	p := strings.ToLower(path)
	if p == "" || p == "/" || p == "/main" {
		return true
	}
	return strings.HasPrefix(p, "/index") || strings.HasPrefix(p, "/home")
}

// NavigationSet 首页主导航中出现的规范化URL集合
// 由NavigationProbe一次性构建, 之后只读
type NavigationSet struct {
	urls map[string]struct{}
}

// NewNavigationSet 创建导航集合, 传入的URL会先做规范化
func NewNavigationSet(urls ...string) *NavigationSet {
	ns := &NavigationSet{urls: make(map[string]struct{}, len(urls))}
	for _, u := range urls {
		ns.Add(u)
	}
	return ns
}

// Add 添加URL(规范化后)
func (ns *NavigationSet) Add(rawURL string) {
	ns.urls[CanonicalURL(rawURL)] = struct{}{}
}

// Contains 检查规范化后的URL是否在导航集合中
func (ns *NavigationSet) Contains(rawURL string) bool {
	_, ok := ns.urls[CanonicalURL(rawURL)]
	return ok
}

// Len 集合大小
func (ns *NavigationSet) Len() int {
	return len(ns.urls)
}

// URLs 返回集合中的全部URL(无序)
func (ns *NavigationSet) URLs() []string {
	out := make([]string, 0, len(ns.urls))
	for u := range ns.urls {
		out = append(out, u)
	}
	return out
}

// WeightedTerm 带权重的核心业务词
type WeightedTerm struct {
	Term   string  `json:"term"`
	Weight float64 `json:"weight"`
}

// TermVocabulary 从首页内容提取的核心业务词汇表
// 按权重降序排列, 最多保留前20个, 构建后只读
type TermVocabulary struct {
	Terms []WeightedTerm `json:"terms"`
}

// Contains 检查词是否在词汇表中
func (tv *TermVocabulary) Contains(term string) bool {
	for _, t := range tv.Terms {
		if t.Term == term {
			return true
		}
	}
	return false
}

// Len 词汇表大小
func (tv *TermVocabulary) Len() int {
	if tv == nil {
		return 0
	}
	return len(tv.Terms)
}
