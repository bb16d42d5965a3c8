package core

import (
	"context"
	"fmt"
	"time"

	"github.com/RecoveryAshes/SiteMapRank/internal/collectors"
	"github.com/RecoveryAshes/SiteMapRank/internal/extract"
	"github.com/RecoveryAshes/SiteMapRank/internal/fetch"
	"github.com/RecoveryAshes/SiteMapRank/internal/models"
	"github.com/RecoveryAshes/SiteMapRank/internal/ranking"
	"github.com/RecoveryAshes/SiteMapRank/internal/utils"
)

// Pipeline 一次排序运行的编排器
// 持有本次运行的全部只读共享状态(规则集/导航集合/词汇表),
// 运行结束即丢弃, 不存在跨运行的可变全局状态
type Pipeline struct {
	config  *Config
	fetcher *fetch.Fetcher
	run     *models.RankRun
}

// NewPipeline 创建排序流水线
func NewPipeline(config *Config, siteURL string) (*Pipeline, error) {
	siteURL, err := models.NormalizeSiteURL(siteURL)
	if err != nil {
		return nil, err
	}

	run, err := models.NewRankRun(siteURL, config.Rank)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		config:  config,
		fetcher: fetch.NewFetcher(time.Duration(config.Rank.FetchTimeout) * time.Second),
		run:     run,
	}, nil
}

// Run 运行的元数据
func (p *Pipeline) Run() *models.RankRun {
	return p.run
}

// Execute 执行完整的排序流程
// 收集->导航探测->词汇提取->评分->选择, 严格顺序执行;
// 只有根站点地图失败和403封禁是致命错误
func (p *Pipeline) Execute(ctx context.Context) (*models.RankReport, error) {
	start := time.Now()
	p.run.Status = models.RunStatusRunning
	utils.Infof("🔍 开始排序运行 [%s]: %s", p.run.ID, p.run.SiteURL)

	// 定位站点地图
	sitemapURL, err := collectors.DiscoverSitemap(ctx, p.fetcher, p.run.SiteURL)
	if err != nil {
		return nil, p.fail(err)
	}
	p.run.SitemapURL = sitemapURL

	// 站点类型检测, 驱动电商评分扩展
	detection := collectors.DetectSiteType(sitemapURL)
	if detection.Type == models.SiteTypeEcommerce && !p.config.Rank.Ecommerce {
		utils.Infof("检测到电商站点 (%s), 自动启用电商评分扩展", detection.Platform)
		p.config.Rank.Ecommerce = true
	}

	// 收集候选页面
	collector := collectors.NewSitemapCollector(p.fetcher, p.config.Rank.SkipProducts)
	candidates, err := collector.Collect(ctx, sitemapURL)
	if err != nil {
		return nil, p.fail(err)
	}
	if len(candidates) == 0 {
		return nil, p.fail(fmt.Errorf("站点地图中没有可用的页面: %s", sitemapURL))
	}
	utils.Infof("✅ 站点地图收集完成: %d个候选页面", len(candidates))

	// 首页导航和核心词汇, 都是非致命步骤
	homepage, err := models.HomepageURL(p.run.SiteURL)
	if err != nil {
		return nil, p.fail(err)
	}
	nav := collectors.NewNavigationProbe(p.fetcher).Probe(ctx, homepage)
	vocab := collectors.NewTermWeightExtractor(p.fetcher).Extract(ctx, homepage)

	// 评分引擎
	rules := ranking.DefaultRuleSet()
	rules.Ecommerce = p.config.Rank.Ecommerce

	var oracle ranking.Oracle
	if p.config.Rank.UseOracle {
		if api := ranking.NewAPIOracle(p.config.OracleAPIKey()); api != nil {
			oracle = api
			utils.Infof("评分预言机已启用")
		} else {
			utils.Warnf("未找到预言机API密钥, 预言机保持关闭")
		}
	}

	engine := ranking.NewEngine(rules, nav, vocab, oracle)
	pool := ranking.NewScorePool(p.config.Rank.MaxWorkers)
	selection := ranking.NewSelector(engine, pool).Select(ctx, candidates, p.config.Rank.PageCount)

	// 组装报告
	now := time.Now()
	p.run.Status = models.RunStatusCompleted
	p.run.CompletedAt = &now
	p.run.Stats = models.RunStats{
		TotalURLs:       len(candidates),
		Duplicates:      selection.Duplicates,
		RegularPages:    selection.RegularPages,
		BlogPosts:       selection.BlogPosts,
		SkippedProducts: collector.SkippedProducts(),
		ScoredPages:     selection.ScoredPages,
		NavigationURLs:  nav.Len(),
		VocabularyTerms: vocab.Len(),
		Duration:        time.Since(start).Seconds(),
	}

	report := &models.RankReport{
		RunID:          p.run.ID,
		SiteURL:        p.run.SiteURL,
		SitemapURL:     sitemapURL,
		Domain:         p.run.Domain,
		GeneratedAt:    now,
		Site:           detection,
		Stats:          p.run.Stats,
		HomepagePinned: selection.HomepagePinned,
		Primary:        selection.Primary,
		Secondary:      selection.Secondary,
	}

	utils.Infof("✨ 排序完成: 主清单%d个, 次级%d个, 耗时%.1f秒",
		len(report.Primary), len(report.Secondary), report.Stats.Duration)
	return report, nil
}

// ExtractContent 对主清单做内容抓取 (可选的下游步骤)
func (p *Pipeline) ExtractContent(ctx context.Context, report *models.RankReport) []*models.PageContent {
	extractor := extract.NewExtractor(p.config.Rank.FetchTimeout, p.config.Rank.RequestDelay)
	return extractor.ExtractAll(ctx, report.Primary)
}

// WriteReports 写出JSON报告和markdown汇总
func (p *Pipeline) WriteReports(report *models.RankReport, contents []*models.PageContent) error {
	reporter, err := utils.NewReporter(p.config.OutputDirFor(report.Domain))
	if err != nil {
		return err
	}
	if _, err := reporter.WriteJSON(report); err != nil {
		return err
	}
	if _, err := reporter.WriteMarkdown(report, contents); err != nil {
		return err
	}
	return nil
}

// fail 标记运行失败并回传错误
func (p *Pipeline) fail(err error) error {
	p.run.Status = models.RunStatusFailed
	p.run.ErrorMessage = err.Error()
	utils.Errorf("排序运行失败 [%s]: %v", p.run.ID, err)
	return err
}
