package ranking

import (
	"context"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/RecoveryAshes/SiteMapRank/internal/models"
	"github.com/RecoveryAshes/SiteMapRank/internal/utils"
)

// Oracle 可选的外部重要性预言机
// 返回[-50,50]内的有界调整值, 任何失败都表现为0
type Oracle interface {
	Adjust(ctx context.Context, pageURL string) float64
}

// Engine 页面重要性评分引擎
// 纯函数式: 预言机关闭时, 相同输入必然产生相同分数
type Engine struct {
	rules  *RuleSet
	nav    *models.NavigationSet
	vocab  *models.TermVocabulary
	oracle Oracle

	// now 可注入的时钟, 测试用
	now func() time.Time
}

// NewEngine 创建评分引擎
// nav和vocab允许为空集合; oracle为nil时跳过预言机调整
func NewEngine(rules *RuleSet, nav *models.NavigationSet, vocab *models.TermVocabulary, oracle Oracle) *Engine {
	if rules == nil {
		rules = DefaultRuleSet()
	}
	if nav == nil {
		nav = models.NewNavigationSet()
	}
	if vocab == nil {
		vocab = &models.TermVocabulary{}
	}
	return &Engine{
		rules:  rules,
		nav:    nav,
		vocab:  vocab,
		oracle: oracle,
		now:    time.Now,
	}
}

// Rules 引擎持有的规则集
func (e *Engine) Rules() *RuleSet {
	return e.rules
}

// IsBlogPost 博客文章分类
// 导航页面无论URL形态如何都不算博客文章
func (e *Engine) IsBlogPost(page *models.PageCandidate) bool {
	if e.nav.Contains(page.URL) {
		return false
	}
	if page.IsPost {
		return true
	}
	return matchAny(e.rules.BlogPostPatterns, strings.ToLower(page.URL))
}

// Score 对单个候选页面评分
// 按固定顺序累加各规则得分, 就地更新page的Score/Depth/标志位并返回分数
func (e *Engine) Score(ctx context.Context, page *models.PageCandidate) float64 {
	score := 0.0

	lowerURL := strings.ToLower(page.URL)
	path := pagePath(page.URL)
	page.Depth = models.PathDepth(page.URL)

	// 1. 垃圾页模式 (查询串/测试/开发/备份路径), 基本等于直接淘汰
	if matchAny(e.rules.JunkPatterns, lowerURL) {
		score += e.rules.JunkPenalty
	}

	// 2. 博客文章 (导航页面豁免)
	if e.IsBlogPost(page) {
		score += e.rules.BlogPenalty
	}

	// 3. 法律/政策页
	if matchAny(e.rules.LegalPatterns, lowerURL) {
		score += e.rules.LegalPenalty
	}

	// 4. 其他低优先级模式 (分页/标签/归档/订阅源)
	if matchAny(e.rules.LowPriorityPatterns, lowerURL) {
		score += e.rules.LowPriorityPenalty
	}

	// 电商扩展: 系统页重罚, 集合页加分, 商品详情页降权
	if e.rules.Ecommerce {
		switch {
		case models.IsSystemPage(page.URL):
			score += e.rules.SystemPagePenalty
		case models.IsCollectionPage(page.URL):
			score += e.rules.CollectionBonus
		case models.IsProductPage(page.URL):
			score += e.rules.ProductPenalty
		}
	}

	// 5. 导航成员
	if e.nav.Contains(page.URL) {
		score += e.rules.NavigationBonus
		page.InNavigation = true
		page.HasKeywordMatch = true
	}

	// 6. 首页检测, 与导航加分互相独立且可叠加
	if models.IsHomepagePath(path) {
		score += e.rules.HomepageBonus
		page.InNavigation = true
		page.HasKeywordMatch = true
	}

	// 7. 核心词汇匹配 (最高优先级关键词层), 首个命中生效且不叠加
	vocabMatched := false
	if term, ok := e.matchVocabulary(path); ok {
		score += e.rules.VocabularyBonus
		page.HasKeywordMatch = true
		page.MatchedTerm = term
		vocabMatched = true
	}

	// 8. 分层关键词, 仅在词汇匹配未命中时求值
	if !vocabMatched {
		score += e.scoreTiers(path, page)
	}

	// 9. 路径深度
	score += depthScore(page.Depth)

	// 10. 站点地图声明的priority
	if page.Priority != nil {
		score += *page.Priority * e.rules.PriorityMultiplier
	}

	// 11. 声明的changefreq
	if page.ChangeFreq != "" {
		weight, ok := e.rules.FreqWeights[string(page.ChangeFreq)]
		if !ok {
			weight = 0.5
		}
		score += weight * e.rules.FreqMultiplier
	}

	// 12. 最近修改时间
	score += e.recencyScore(page.LastMod)

	// 13. 预言机调整, 最后应用且只对未被淘汰的页面生效
	if e.oracle != nil && score > e.rules.OracleFloor {
		score += e.oracle.Adjust(ctx, page.URL)
	}

	score = math.Round(score*100) / 100
	page.Score = score
	return score
}

// matchVocabulary 在路径中查找词汇表词条
// 依次尝试直接子串、连字符/下划线归一化、语义等价词; 泛词排除表里的词条跳过
func (e *Engine) matchVocabulary(path string) (string, bool) {
	lowerPath := strings.ToLower(path)
	normPath := normalizeSeparators(lowerPath)

	for _, wt := range e.vocab.Terms {
		term := strings.ToLower(wt.Term)
		if _, denied := e.rules.VocabularyDenylist[term]; denied {
			continue
		}

		// 直接匹配 (多词词条按连字符形态测试)
		hyphenated := strings.ReplaceAll(term, " ", "-")
		if strings.Contains(lowerPath, hyphenated) {
			return wt.Term, true
		}
		// 分隔符归一化后匹配
		if strings.Contains(normPath, normalizeSeparators(term)) {
			return wt.Term, true
		}
		// 语义等价词
		for _, alt := range e.rules.SemanticEquivalences[term] {
			if strings.Contains(lowerPath, alt) {
				return wt.Term, true
			}
		}
	}
	return "", false
}

// scoreTiers 分层关键词求值
// 核心业务层命中则不再看后两层; 层内所有命中关键词的得分累加
func (e *Engine) scoreTiers(path string, page *models.PageCandidate) float64 {
	if s := scoreTier(e.rules.CoreBusiness, e.rules.CoreMultipliers, path); s != 0 {
		page.HasKeywordMatch = true
		return s
	}
	if s := scoreTier(e.rules.SupportTier, e.rules.SupportMultipliers, path); s != 0 {
		page.HasKeywordMatch = true
		return s
	}
	if s := scoreTier(e.rules.Organizational, e.rules.OrgMultipliers, path); s != 0 {
		page.HasKeywordMatch = true
		return s
	}
	return 0
}

// scoreTier 单层求值: 精确路径段命中和子串命中使用不同倍率
func scoreTier(tier KeywordTier, mult TierMultipliers, path string) float64 {
	lowerPath := strings.ToLower(path)
	segments := pathSegments(lowerPath)

	total := 0.0
	for keyword, points := range tier {
		if containsSegment(segments, keyword) {
			total += points * mult.Exact
		} else if strings.Contains(lowerPath, keyword) {
			total += points * mult.Substring
		}
	}
	return total
}

// depthScore 路径深度得分, 浅路径显著占优
func depthScore(depth int) float64 {
	switch depth {
	case 0:
		return 25
	case 1:
		return 20
	case 2:
		return 8
	case 3:
		return 2
	default:
		return -3 * float64(depth-3)
	}
}

// recencyScore 按最后修改距今的天数加分
// 时间戳解析失败时静默忽略, 不影响分数
func (e *Engine) recencyScore(lastmod string) float64 {
	if lastmod == "" {
		return 0
	}
	t, ok := parseLastMod(lastmod)
	if !ok {
		utils.Debugf("无法解析lastmod时间戳: %s", lastmod)
		return 0
	}

	days := e.now().Sub(t).Hours() / 24
	switch {
	case days <= 7:
		return 30
	case days <= 30:
		return 20
	case days <= 90:
		return 15
	case days <= 180:
		return 10
	case days <= 365:
		return 5
	default:
		return 0
	}
}

// lastmodLayouts 站点地图里常见的lastmod时间格式
var lastmodLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseLastMod(lastmod string) (time.Time, bool) {
	s := strings.TrimSpace(lastmod)
	for _, layout := range lastmodLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// pagePath 提取URL的路径部分, 解析失败时退回原串
func pagePath(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return parsed.Path
}

// pathSegments 拆分非空路径段
func pathSegments(path string) []string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

func containsSegment(segments []string, keyword string) bool {
	for _, seg := range segments {
		if seg == keyword {
			return true
		}
	}
	return false
}

// normalizeSeparators 去掉连字符/下划线/空格, 用于宽松匹配
func normalizeSeparators(s string) string {
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}
