package models

import (
	"encoding/json"
	"time"
)

// SiteDetection 站点类型检测结果
type SiteDetection struct {
	Type       SiteType `json:"type"`                 // standard / ecommerce
	Platform   string   `json:"platform,omitempty"`   // Shopify / WooCommerce / BigCommerce / Unknown
	Confidence string   `json:"confidence"`           // high / medium / low
	Indicators []string `json:"indicators,omitempty"` // 命中的特征
}

// RankReport 排序结果报告
// 交给下游内容抓取/汇总阶段的最终产物
type RankReport struct {
	RunID       string        `json:"run_id"`
	SiteURL     string        `json:"site_url"`
	SitemapURL  string        `json:"sitemap_url"`
	Domain      string        `json:"domain"`
	GeneratedAt time.Time     `json:"generated_at"`
	Site        SiteDetection `json:"site"`
	Stats       RunStats      `json:"stats"`

	// HomepagePinned 首页是否被置顶; false表示候选集中没有首页
	HomepagePinned bool `json:"homepage_pinned"`

	// Primary 主清单(前requestedCount个)
	Primary []*PageCandidate `json:"primary"`
	// Secondary 次级清单(最多25个), 调用方可选择并入主清单
	Secondary []*PageCandidate `json:"secondary"`
}

// ToJSON 序列化为JSON
func (r *RankReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FromJSON 从JSON反序列化
func (r *RankReport) FromJSON(data []byte) error {
	return json.Unmarshal(data, r)
}
