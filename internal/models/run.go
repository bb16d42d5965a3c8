package models

import (
	"fmt"
	"net/url"
	"time"
)

// RunStatus 排序任务状态
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"   // 待执行
	RunStatusRunning   RunStatus = "running"   // 执行中
	RunStatusCompleted RunStatus = "completed" // 已完成
	RunStatusFailed    RunStatus = "failed"    // 失败
)

// SiteType 站点类型
type SiteType string

const (
	SiteTypeStandard  SiteType = "standard"  // 普通企业/内容站
	SiteTypeEcommerce SiteType = "ecommerce" // 电商站
)

// RankConfig 排序任务配置
type RankConfig struct {
	PageCount    int  `json:"page_count" mapstructure:"page_count"`       // 主清单页面数 (1-50)
	FetchTimeout int  `json:"fetch_timeout" mapstructure:"fetch_timeout"` // 单次请求超时(秒)
	RequestDelay int  `json:"request_delay" mapstructure:"request_delay"` // 内容抓取间隔(秒)
	UseOracle    bool `json:"use_oracle" mapstructure:"use_oracle"`       // 启用外部评分预言机
	Ecommerce    bool `json:"ecommerce" mapstructure:"ecommerce"`         // 启用电商评分扩展
	SkipProducts bool `json:"skip_products" mapstructure:"skip_products"` // 跳过商品子站点地图
	MaxWorkers   int  `json:"max_workers" mapstructure:"max_workers"`     // 评分并发数 (0=自动)
}

// Validate 验证配置
func (c *RankConfig) Validate() error {
	if c.PageCount < 1 || c.PageCount > 50 {
		return fmt.Errorf("页面数必须在1-50之间")
	}
	if c.FetchTimeout < 1 || c.FetchTimeout > 120 {
		return fmt.Errorf("请求超时必须在1-120秒之间")
	}
	if c.RequestDelay < 0 || c.RequestDelay > 60 {
		return fmt.Errorf("请求间隔必须在0-60秒之间")
	}
	if c.MaxWorkers < 0 || c.MaxWorkers > 64 {
		return fmt.Errorf("并发数必须在0-64之间")
	}
	return nil
}

// RunStats 排序任务统计
type RunStats struct {
	TotalURLs       int     `json:"total_urls"`       // 站点地图中的URL总数
	Duplicates      int     `json:"duplicates"`       // 去重移除数
	RegularPages    int     `json:"regular_pages"`    // 普通页面数
	BlogPosts       int     `json:"blog_posts"`       // 博客/文章数
	SkippedProducts int     `json:"skipped_products"` // 跳过的商品URL数
	ScoredPages     int     `json:"scored_pages"`     // 实际评分的页面数
	NavigationURLs  int     `json:"navigation_urls"`  // 导航集合大小
	VocabularyTerms int     `json:"vocabulary_terms"` // 核心词汇数
	Duration        float64 `json:"duration"`         // 总耗时(秒)
}

// RankRun 一次完整的排序运行
type RankRun struct {
	ID          string     `json:"id"`          // 运行唯一ID (UUID)
	SiteURL     string     `json:"site_url"`    // 目标站点URL
	SitemapURL  string     `json:"sitemap_url"` // 解析到的站点地图URL
	Domain      string     `json:"domain"`      // 域名
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Config RankConfig `json:"config"`
	Status RunStatus  `json:"status"`
	Stats  RunStats   `json:"stats"`

	ErrorMessage string `json:"error_message,omitempty"`
}

// NewRankRun 创建新的排序运行
func NewRankRun(siteURL string, config RankConfig) (*RankRun, error) {
	if err := ValidateURL(siteURL); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	parsed, _ := url.Parse(siteURL)

	return &RankRun{
		ID:        generateID(),
		SiteURL:   siteURL,
		Domain:    parsed.Host,
		CreatedAt: time.Now(),
		Config:    config,
		Status:    RunStatusPending,
		Stats:     RunStats{},
	}, nil
}
