package models

// PageContent 内容抓取阶段从单个页面提取的文本
type PageContent struct {
	URL             string   `json:"url"`
	Title           string   `json:"title,omitempty"`
	H1              string   `json:"h1,omitempty"`
	MetaDescription string   `json:"meta_description,omitempty"`
	Headings        []string `json:"headings,omitempty"`   // H2/H3小节标题
	MainText        string   `json:"main_text,omitempty"`  // 主内容区文本
	ImageAlts       []string `json:"image_alts,omitempty"` // 图片替代文本
	Score           float64  `json:"score"`                // 排序阶段的得分, 写报告用

	// Error 抓取失败的原因, 为空表示成功
	Error string `json:"error,omitempty"`
}
