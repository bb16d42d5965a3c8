package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/RecoveryAshes/SiteMapRank/internal/models"
)

// Reporter 排序结果写盘器
// 产出两份文件: JSON格式的完整报告和人类可读的markdown汇总
type Reporter struct {
	outputDir string
}

// NewReporter 创建写盘器, outputDir不存在时自动创建
func NewReporter(outputDir string) (*Reporter, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}
	return &Reporter{outputDir: outputDir}, nil
}

// OutputDir 输出目录
func (r *Reporter) OutputDir() string {
	return r.outputDir
}

// WriteJSON 写出JSON排序报告, 返回文件路径
func (r *Reporter) WriteJSON(report *models.RankReport) (string, error) {
	data, err := report.ToJSON()
	if err != nil {
		return "", fmt.Errorf("序列化报告失败: %w", err)
	}

	path := filepath.Join(r.outputDir, fmt.Sprintf("rank_report_%s.json", timestamp(report.GeneratedAt)))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("写入报告失败: %w", err)
	}

	Infof("JSON报告已写入: %s", path)
	return path, nil
}

// WriteMarkdown 写出markdown汇总文件, 返回文件路径
// contents为nil时只写排序结果, 不含页面内容章节
func (r *Reporter) WriteMarkdown(report *models.RankReport, contents []*models.PageContent) (string, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# 页面重要性排序报告\n\n")
	fmt.Fprintf(&sb, "- 站点: %s\n", report.SiteURL)
	fmt.Fprintf(&sb, "- 站点地图: %s\n", report.SitemapURL)
	fmt.Fprintf(&sb, "- 生成时间: %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "- 站点类型: %s", report.Site.Type)
	if report.Site.Platform != "" {
		fmt.Fprintf(&sb, " (%s)", report.Site.Platform)
	}
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "## 统计\n\n")
	fmt.Fprintf(&sb, "- URL总数: %d\n", report.Stats.TotalURLs)
	fmt.Fprintf(&sb, "- 去重移除: %d\n", report.Stats.Duplicates)
	fmt.Fprintf(&sb, "- 普通页面: %d, 博客文章: %d\n", report.Stats.RegularPages, report.Stats.BlogPosts)
	if report.Stats.SkippedProducts > 0 {
		fmt.Fprintf(&sb, "- 跳过的商品URL: %d\n", report.Stats.SkippedProducts)
	}
	fmt.Fprintf(&sb, "- 导航页面: %d, 核心词汇: %d\n", report.Stats.NavigationURLs, report.Stats.VocabularyTerms)
	fmt.Fprintf(&sb, "- 耗时: %.1f秒\n\n", report.Stats.Duration)

	writeRankTable(&sb, "## 主清单", report.Primary)
	if len(report.Secondary) > 0 {
		writeRankTable(&sb, "## 次级清单", report.Secondary)
	}

	if len(contents) > 0 {
		sb.WriteString("## 页面内容\n\n")
		for _, content := range contents {
			writeContentSection(&sb, content)
		}
	}

	path := filepath.Join(r.outputDir, fmt.Sprintf("summary_%s.md", timestamp(report.GeneratedAt)))
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return "", fmt.Errorf("写入汇总失败: %w", err)
	}

	Infof("Markdown汇总已写入: %s", path)
	return path, nil
}

func writeRankTable(sb *strings.Builder, title string, pages []*models.PageCandidate) {
	fmt.Fprintf(sb, "%s\n\n", title)
	sb.WriteString("| # | 分数 | 类型 | 导航 | 深度 | 关键词 | URL |\n")
	sb.WriteString("|---|------|------|------|------|--------|-----|\n")
	for i, page := range pages {
		pageType := "Page"
		if page.IsPost {
			pageType = "Post"
		}
		fmt.Fprintf(sb, "| %d | %.2f | %s | %s | %d | %s | %s |\n",
			i+1, page.Score, pageType,
			yesNo(page.InNavigation), page.Depth,
			yesNo(page.HasKeywordMatch), page.URL)
	}
	sb.WriteString("\n")
}

func writeContentSection(sb *strings.Builder, content *models.PageContent) {
	fmt.Fprintf(sb, "### %s\n\n", content.URL)
	if content.Error != "" {
		fmt.Fprintf(sb, "抓取失败: %s\n\n", content.Error)
		return
	}
	if content.Title != "" {
		fmt.Fprintf(sb, "**标题**: %s\n\n", content.Title)
	}
	if content.MetaDescription != "" {
		fmt.Fprintf(sb, "**描述**: %s\n\n", content.MetaDescription)
	}
	if content.H1 != "" {
		fmt.Fprintf(sb, "**H1**: %s\n\n", content.H1)
	}
	if len(content.Headings) > 0 {
		fmt.Fprintf(sb, "**小节**: %s\n\n", strings.Join(content.Headings, " / "))
	}
	if content.MainText != "" {
		fmt.Fprintf(sb, "%s\n\n", content.MainText)
	}
}

func yesNo(b bool) string {
	if b {
		return "Y"
	}
	return ""
}

func timestamp(t time.Time) string {
	return t.Format("20060102_150405")
}
