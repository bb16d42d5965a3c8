package ranking

import (
	"context"
	"sort"

	"github.com/RecoveryAshes/SiteMapRank/internal/models"
	"github.com/RecoveryAshes/SiteMapRank/internal/utils"
)

const (
	// postScoreBudget 博客文章评分预算基数: 正式页面不足50时才给博客让位
	postScoreBudget = 50

	// postSentinelScore 超出预算的博客文章的固定哨兵分, 不再区分
	postSentinelScore = -200

	// secondaryTierCap 次级梯队最大条目数
	secondaryTierCap = 25
)

// Selection 排序选择结果
type Selection struct {
	// Primary 主名单, 长度不超过请求数
	Primary []*models.PageCandidate

	// Secondary 次级梯队, 调用方可选择并入主名单
	Secondary []*models.PageCandidate

	// HomepagePinned 是否找到了首页并钉在第1位
	HomepagePinned bool

	// 过程统计, 供报告使用
	Duplicates   int // 去重移除的条目数
	RegularPages int // 正式页面数
	BlogPosts    int // 博客文章数
	ScoredPages  int // 实际过引擎评分的页面数 (其余拿哨兵分)
}

// Selector 去重、排序、选择器
type Selector struct {
	engine *Engine
	pool   *ScorePool
}

// NewSelector 创建选择器
// pool为nil时退化为串行评分
func NewSelector(engine *Engine, pool *ScorePool) *Selector {
	return &Selector{engine: engine, pool: pool}
}

// Select 对候选集合去重、评分、排序并产出主名单和次级梯队
// 排序按分数降序, 同分按发现顺序; 首页无条件钉在第1位
func (s *Selector) Select(ctx context.Context, candidates []*models.PageCandidate, requestedCount int) *Selection {
	deduped := dedupeCandidates(candidates)
	utils.Infof("去重完成: %d -> %d个候选页面", len(candidates), len(deduped))

	// 正式页面和博客文章分离, 分类口径与评分规则一致
	var regular, posts []*models.PageCandidate
	for _, page := range deduped {
		if s.engine.IsBlogPost(page) {
			posts = append(posts, page)
		} else {
			regular = append(regular, page)
		}
	}
	utils.Infof("页面分类: %d个正式页面, %d篇博客文章", len(regular), len(posts))

	s.scoreAll(ctx, regular)

	// 博客文章只给有限的评分预算, 按声明的时效/priority预筛
	budget := postScoreBudget - len(regular)
	if budget < 0 {
		budget = 0
	}
	if budget > len(posts) {
		budget = len(posts)
	}
	if budget < len(posts) {
		sortPostsByFreshness(posts)
	}
	s.scoreAll(ctx, posts[:budget])
	for _, page := range posts[budget:] {
		page.Score = postSentinelScore
	}

	combined := make([]*models.PageCandidate, 0, len(deduped))
	combined = append(combined, regular...)
	combined = append(combined, posts...)

	// 分数降序; SliceStable保证同分按发现顺序, 排序结果可复现
	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].Score > combined[j].Score
	})

	pinned := pinHomepage(combined)
	if !pinned {
		utils.Warnf("候选集合中没有首页, 跳过置顶")
	}

	sel := &Selection{
		HomepagePinned: pinned,
		Duplicates:     len(candidates) - len(deduped),
		RegularPages:   len(regular),
		BlogPosts:      len(posts),
		ScoredPages:    len(regular) + budget,
	}
	if requestedCount > len(combined) {
		requestedCount = len(combined)
	}
	sel.Primary = combined[:requestedCount]

	rest := combined[requestedCount:]
	if len(rest) > secondaryTierCap {
		rest = rest[:secondaryTierCap]
	}
	sel.Secondary = rest

	return sel
}

// scoreAll 对一批页面评分, 有工作池时并行
func (s *Selector) scoreAll(ctx context.Context, pages []*models.PageCandidate) {
	if s.pool != nil {
		s.pool.ScoreAll(ctx, s.engine, pages)
		return
	}
	for _, page := range pages {
		s.engine.Score(ctx, page)
	}
}

// dedupeCandidates 按规范化URL去重
// 同一规范化URL同时存在正式页和博客页副本时保留非博客副本,
// 保留条目停在首次出现的位置以维持发现顺序
func dedupeCandidates(candidates []*models.PageCandidate) []*models.PageCandidate {
	index := make(map[string]int, len(candidates))
	result := make([]*models.PageCandidate, 0, len(candidates))

	for _, page := range candidates {
		key := models.CanonicalURL(page.URL)
		if pos, seen := index[key]; seen {
			if result[pos].IsPost && !page.IsPost {
				result[pos] = page
			}
			continue
		}
		index[key] = len(result)
		result = append(result, page)
	}
	return result
}

// sortPostsByFreshness 博客文章的预筛排序: 先按lastmod新旧, 再按声明priority
func sortPostsByFreshness(posts []*models.PageCandidate) {
	sort.SliceStable(posts, func(i, j int) bool {
		ti, iok := parseLastMod(posts[i].LastMod)
		tj, jok := parseLastMod(posts[j].LastMod)
		if iok != jok {
			return iok
		}
		if iok && !ti.Equal(tj) {
			return ti.After(tj)
		}
		return declaredPriority(posts[i]) > declaredPriority(posts[j])
	})
}

func declaredPriority(page *models.PageCandidate) float64 {
	if page.Priority == nil {
		return 0
	}
	return *page.Priority
}

// pinHomepage 把首页移到第1位, 不论其计算得分
func pinHomepage(pages []*models.PageCandidate) bool {
	for i, page := range pages {
		if models.IsHomepagePath(pagePath(page.URL)) {
			if i > 0 {
				home := pages[i]
				copy(pages[1:i+1], pages[:i])
				pages[0] = home
			}
			return true
		}
	}
	return false
}
