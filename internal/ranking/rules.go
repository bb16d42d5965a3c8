package ranking

import "regexp"

// KeywordTier 关键词层级: 关键词到基础分的映射
type KeywordTier map[string]float64

// TierMultipliers 层级命中方式的倍率
type TierMultipliers struct {
	Exact     float64 // 精确路径段命中
	Substring float64 // 子串命中
}

// RuleSet 评分规则集, 引擎构造时加载, 全程只读
// 分值大小是可调配置而非不可动的常量, 默认值来自线上调参结果
type RuleSet struct {
	// 三个关键词层级, 按优先级降序求值
	CoreBusiness   KeywordTier
	SupportTier    KeywordTier
	Organizational KeywordTier

	CoreMultipliers    TierMultipliers
	SupportMultipliers TierMultipliers
	OrgMultipliers     TierMultipliers

	// URL模式分类
	JunkPatterns        []*regexp.Regexp
	BlogPostPatterns    []*regexp.Regexp
	LegalPatterns       []*regexp.Regexp
	LowPriorityPatterns []*regexp.Regexp

	// changefreq权重表
	FreqWeights map[string]float64

	// 各规则的分值
	JunkPenalty        float64
	BlogPenalty        float64
	LegalPenalty       float64
	LowPriorityPenalty float64
	NavigationBonus    float64
	HomepageBonus      float64
	VocabularyBonus    float64
	PriorityMultiplier float64
	FreqMultiplier     float64

	// 词汇表匹配的泛词排除表和语义等价表
	VocabularyDenylist   map[string]struct{}
	SemanticEquivalences map[string][]string

	// 预言机调整的启用门槛: 当前分低于门槛时不再花调用额度
	OracleFloor float64

	// 电商扩展 (Ecommerce开启时生效)
	Ecommerce         bool
	CollectionBonus   float64
	ProductPenalty    float64
	SystemPagePenalty float64
}

// DefaultRuleSet 默认评分规则集
func DefaultRuleSet() *RuleSet {
	return &RuleSet{
		CoreBusiness: KeywordTier{
			"services":     25,
			"products":     25,
			"solutions":    25,
			"plans":        20,
			"features":     18,
			"portfolio":    12,
			"work":         12,
			"case-studies": 12,
		},
		SupportTier: KeywordTier{
			"about":        35,
			"about-us":     35,
			"pricing":      20,
			"why-us":       18,
			"support":      15,
			"help":         15,
			"faq":          15,
			"testimonials": 10,
			"reviews":      10,
			"contact":      5,
			"contact-us":   5,
			"reach-us":     5,
		},
		Organizational: KeywordTier{
			"team":    15,
			"careers": 15,
			"jobs":    15,
			"news":    10,
			"blog":    1,
		},

		CoreMultipliers:    TierMultipliers{Exact: 2.0, Substring: 1.5},
		SupportMultipliers: TierMultipliers{Exact: 1.2, Substring: 0.8},
		OrgMultipliers:     TierMultipliers{Exact: 0.8, Substring: 0.5},

		JunkPatterns: compilePatterns(
			`\?.*=.*`,
			`/test[\-_]`,
			`/dev[\-_]`,
			`/staging`,
			`/demo[\-_]`,
			`/temp[\-_]`,
			`/draft`,
			`/sample`,
			`[\-_]test[\-_]`,
			`[\-_]dev[\-_]`,
			`/placeholder`,
			`/coming[\-_]soon`,
			`/under[\-_]construction`,
			`\.backup\.`,
			`\.old\.`,
			`/backup/`,
			`/old/`,
		),
		BlogPostPatterns: compilePatterns(
			`/blog/.+`,
			`/post/.+`,
			`/posts/.+`,
			`/article/.+`,
			`/articles/.+`,
			`/news/.+`,
			`/\d{4}/\d{2}/`,
			`/[^/]*-[^/]*-[^/]*-[^/]*-[^/]*`, // 4个以上连字符的长描述性slug
			`/how-[^/]+`,
			`/why-[^/]+`,
			`/what-[^/]+`,
			`/when-[^/]+`,
			`/where-[^/]+`,
			`/\d+-[^/]+-[^/]+-[^/]+`, // "5-ways-to"类数字清单slug
			`/guide-[^/]+`,
			`/tips-[^/]+`,
		),
		LegalPatterns: compilePatterns(
			`/privacy`,
			`/terms`,
			`/legal`,
			`/cookie`,
			`/gdpr`,
			`/accessibility`,
			`/license`,
			`/disclaimer`,
		),
		LowPriorityPatterns: compilePatterns(
			`/page/\d+`,
			`/tag/`,
			`/category/`,
			`/author/`,
			`/search`,
			`/feed`,
			`\.xml$`,
			`\.pdf$`,
			`/archive`,
			`/sitemap`,
		),

		FreqWeights: map[string]float64{
			"always":  1.0,
			"hourly":  0.9,
			"daily":   0.8,
			"weekly":  0.7,
			"monthly": 0.6,
			"yearly":  0.4,
			"never":   0.1,
		},

		JunkPenalty:        -1000,
		BlogPenalty:        -150,
		LegalPenalty:       -500,
		LowPriorityPenalty: -30,
		NavigationBonus:    200,
		HomepageBonus:      500,
		VocabularyBonus:    600,
		PriorityMultiplier: 15,
		FreqMultiplier:     8,

		VocabularyDenylist: map[string]struct{}{
			"marketing": {},
			"strategy":  {},
			"business":  {},
			"digital":   {},
			"online":    {},
			"website":   {},
			"company":   {},
		},
		SemanticEquivalences: map[string][]string{
			"seo":        {"search", "engine"},
			"e-commerce": {"shop", "store", "commerce"},
			"ecommerce":  {"shop", "store", "commerce"},
			"consulting": {"consult"},
		},

		OracleFloor: -100,

		CollectionBonus:   150,
		ProductPenalty:    -50,
		SystemPagePenalty: -800,
	}
}

func compilePatterns(exprs ...string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		patterns = append(patterns, regexp.MustCompile(`(?i)`+expr))
	}
	return patterns
}

func matchAny(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}
