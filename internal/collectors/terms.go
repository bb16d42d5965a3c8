package collectors

import (
	"bytes"
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/RecoveryAshes/SiteMapRank/internal/fetch"
	"github.com/RecoveryAshes/SiteMapRank/internal/models"
	"github.com/RecoveryAshes/SiteMapRank/internal/utils"
)

const (
	// vocabularyCap 词汇表最大条目数
	vocabularyCap = 20

	// minTermWeight 入选词汇表的最低加权频次, 过滤一次性噪声
	minTermWeight = 2.0
)

// weightedSource 按权重降序的标记结构来源
type weightedSource struct {
	selector string
	weight   float64
	limit    int // 0 = 不限
}

var termSources = []weightedSource{
	{selector: "title", weight: 5},
	{selector: "h1", weight: 4},
	{selector: "h2", weight: 3, limit: 10},
	{selector: "h3", weight: 2, limit: 15},
	{selector: ".hero, .banner, .tagline, .jumbotron, .hero-content, .intro", weight: 2, limit: 5},
	{selector: "main p, article p, .content p, #content p", weight: 1, limit: 5},
}

// industryPhrases 已知行业/服务短语, 整句匹配
var industryPhrases = []string{
	"web design", "web development", "digital marketing", "seo",
	"graphic design", "social media", "app development", "e-commerce",
	"interior design", "real estate", "financial planning", "law firm",
	"content marketing", "cloud computing", "data analytics",
	"machine learning", "property management", "event planning",
}

// industryIndicators 行业指示子串, 命中即视为业务相关
var industryIndicators = []string{
	"design", "market", "develop", "consult", "engineer", "repair",
	"clean", "build", "insur", "financ", "legal", "medic", "dental",
	"tech", "software", "secur", "logist", "energ", "estate", "travel",
	"hotel", "restaur", "fitness", "beauty", "photo", "account",
	"recruit", "therap", "landscap", "roofing", "plumb",
}

// stopWords 通用停用词
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "our": {}, "your": {}, "with": {},
	"from": {}, "this": {}, "that": {}, "have": {}, "has": {}, "was": {},
	"were": {}, "will": {}, "what": {}, "when": {}, "where": {}, "which": {},
	"their": {}, "them": {}, "they": {}, "been": {}, "more": {}, "most": {},
	"other": {}, "some": {}, "such": {}, "only": {}, "into": {}, "over": {},
	"than": {}, "then": {}, "very": {}, "about": {}, "also": {}, "how": {},
	"why": {}, "who": {}, "get": {}, "out": {}, "here": {}, "there": {},
}

// genericFillers 通用商业填充词, 不构成区分度
var genericFillers = map[string]struct{}{
	"company": {}, "service": {}, "quality": {}, "welcome": {},
	"best": {}, "professional": {}, "leading": {}, "great": {},
	"good": {}, "home": {}, "page": {}, "click": {}, "learn": {},
	"read": {}, "contact": {}, "today": {}, "free": {}, "offer": {},
}

var wordSplitter = regexp.MustCompile(`[^a-z0-9\-]+`)

// TermWeightExtractor 首页核心业务词提取器
type TermWeightExtractor struct {
	fetcher *fetch.Fetcher
}

// NewTermWeightExtractor 创建提取器
func NewTermWeightExtractor(fetcher *fetch.Fetcher) *TermWeightExtractor {
	return &TermWeightExtractor{fetcher: fetcher}
}

// Extract 抓取首页并提取核心业务词汇表
// 该步骤从不让运行失败: 任何内部错误都降级为标题/H1兜底词表
func (te *TermWeightExtractor) Extract(ctx context.Context, homepageURL string) *models.TermVocabulary {
	resp, err := te.fetcher.Fetch(ctx, homepageURL)
	if err != nil {
		utils.Warnf("首页抓取失败, 词汇表为空: %v", err)
		return &models.TermVocabulary{}
	}

	body := fetch.DecodeBody(resp.Header, resp.Body)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		utils.Warnf("首页解析失败, 词汇表为空: %v", err)
		return &models.TermVocabulary{}
	}

	vocab := extractWithFallback(doc)
	utils.Infof("核心业务词汇提取完成: %d个词", vocab.Len())
	for _, t := range vocab.Terms {
		utils.Debugf("核心词: %s (权重 %.1f)", t.Term, t.Weight)
	}
	return vocab
}

// extractWithFallback 完整提取, 内部panic时降级为兜底词表
func extractWithFallback(doc *goquery.Document) (vocab *models.TermVocabulary) {
	defer func() {
		if r := recover(); r != nil {
			utils.Warnf("词汇提取异常(%v), 降级为标题/H1兜底", r)
			vocab = fallbackVocabulary(doc)
		}
	}()
	return ExtractVocabulary(doc)
}

// ExtractVocabulary 从首页文档提取加权词汇表
// 按固定层级加权标记结构, 加权频次前20且不低于2的词入选
func ExtractVocabulary(doc *goquery.Document) *models.TermVocabulary {
	tally := make(map[string]float64)

	for _, source := range termSources {
		doc.Find(source.selector).EachWithBreak(func(i int, sel *goquery.Selection) bool {
			if source.limit > 0 && i >= source.limit {
				return false
			}
			tallyText(tally, sel.Text(), source.weight)
			return true
		})
	}

	return buildVocabulary(tally)
}

// tallyText 从一个文本单元提取候选词并累加权重
func tallyText(tally map[string]float64, text string, weight float64) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return
	}

	// 已知行业短语整句匹配
	for _, phrase := range industryPhrases {
		if strings.Contains(lower, phrase) {
			tally[phrase] += weight
		}
	}

	words := splitWords(lower)

	// 单词
	for _, w := range words {
		if isBusinessRelevant(w) {
			tally[w] += weight
		}
	}

	// 相邻词二元组和三元组
	for i := 0; i+1 < len(words); i++ {
		bigram := words[i] + " " + words[i+1]
		if isRelevantPhrase(words[i : i+2]) {
			tally[bigram] += weight
		}
		if i+2 < len(words) {
			trigram := bigram + " " + words[i+2]
			if isRelevantPhrase(words[i : i+3]) {
				tally[trigram] += weight
			}
		}
	}
}

// splitWords 拆分文本为小写单词
func splitWords(text string) []string {
	parts := wordSplitter.Split(text, -1)
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, "-")
		if len(p) >= 2 {
			words = append(words, p)
		}
	}
	return words
}

// isBusinessRelevant 单词的业务相关性判断
// 排除停用词和填充词; 命中行业指示子串直接保留, 否则要求长度≥4
func isBusinessRelevant(word string) bool {
	if _, ok := stopWords[word]; ok {
		return false
	}
	if _, ok := genericFillers[word]; ok {
		return false
	}
	for _, ind := range industryIndicators {
		if strings.Contains(word, ind) {
			return true
		}
	}
	return len(word) >= 4
}

// isRelevantPhrase 多词候选的业务相关性: 每个成分词都得是业务相关词
func isRelevantPhrase(words []string) bool {
	for _, w := range words {
		if !isBusinessRelevant(w) {
			return false
		}
	}
	return true
}

// buildVocabulary 过滤、排序并截断为最终词汇表
func buildVocabulary(tally map[string]float64) *models.TermVocabulary {
	terms := make([]models.WeightedTerm, 0, len(tally))
	for term, weight := range tally {
		if weight >= minTermWeight {
			terms = append(terms, models.WeightedTerm{Term: term, Weight: weight})
		}
	}

	// 权重降序, 同权按字典序, 保证可复现
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Weight != terms[j].Weight {
			return terms[i].Weight > terms[j].Weight
		}
		return terms[i].Term < terms[j].Term
	})

	if len(terms) > vocabularyCap {
		terms = terms[:vocabularyCap]
	}
	return &models.TermVocabulary{Terms: terms}
}

// fallbackVocabulary 兜底词表: 只取标题和H1的单词
func fallbackVocabulary(doc *goquery.Document) *models.TermVocabulary {
	tally := make(map[string]float64)
	tallyText(tally, doc.Find("title").Text(), 5)
	doc.Find("h1").Each(func(_ int, sel *goquery.Selection) {
		tallyText(tally, sel.Text(), 4)
	})
	return buildVocabulary(tally)
}
