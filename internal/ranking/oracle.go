package ranking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/RecoveryAshes/SiteMapRank/internal/utils"
)

const (
	oracleEndpoint = "https://api.anthropic.com/v1/messages"
	oracleModel    = "claude-3-haiku-20240307"
	oracleVersion  = "2023-06-01"
	oracleTimeout  = 15 * time.Second

	// 调整值的硬边界
	oracleMin = -50
	oracleMax = 50
)

// oraclePromptTemplate 固定的最小提示词, 只依赖URL形态
const oraclePromptTemplate = `You must respond with ONLY a single number between -50 and +50. No text, no explanation.

URL: %s
Domain: %s
Path: %s

Rate this URL's business importance (-50 to +50):
- Homepage: +40
- About/Contact/Services: +30 to +35
- Product/service pages: +20 to +30
- Blog posts: -10 to +5
- Test/dev pages: -40
- Login/admin pages: -30

RESPOND WITH ONLY THE NUMBER (e.g. 25 or -15)`

var firstNumberPattern = regexp.MustCompile(`(-?\d+(?:\.\d+)?)`)

// APIOracle 基于大模型API的重要性预言机
// 对每个URL做一次有界的数值查询; 任何传输或解析失败都退化为0, 只记日志
type APIOracle struct {
	apiKey string
	client *http.Client
}

// NewAPIOracle 创建预言机客户端, apiKey为空时返回nil (视为未启用)
func NewAPIOracle(apiKey string) *APIOracle {
	if apiKey == "" {
		return nil
	}
	return &APIOracle{
		apiKey: apiKey,
		client: &http.Client{Timeout: oracleTimeout},
	}
}

type oracleRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []oracleMessage `json:"messages"`
}

type oracleMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type oracleResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// Adjust 查询单个URL的重要性调整值
func (o *APIOracle) Adjust(ctx context.Context, pageURL string) float64 {
	prompt := buildOraclePrompt(pageURL)

	reply, err := o.evaluate(ctx, prompt)
	if err != nil {
		utils.Debugf("预言机调用失败 [%s]: %v", pageURL, err)
		return 0
	}

	score, ok := ParseOracleReply(reply)
	if !ok {
		utils.Debugf("预言机回复无法解析 [%s]: %q", pageURL, reply)
		return 0
	}
	return score
}

// evaluate 发起一次API调用并取回文本回复
func (o *APIOracle) evaluate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(oracleRequest{
		Model:     oracleModel,
		MaxTokens: 10,
		Messages:  []oracleMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, oracleEndpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", o.apiKey)
	req.Header.Set("anthropic-version", oracleVersion)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API返回状态码%d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", err
	}

	var parsed oracleResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("回复内容为空")
	}
	return parsed.Content[0].Text, nil
}

// buildOraclePrompt 组装固定提示词
func buildOraclePrompt(pageURL string) string {
	domain, path := pageURL, ""
	if parsed, err := url.Parse(pageURL); err == nil {
		domain = strings.TrimPrefix(parsed.Host, "www.")
		path = parsed.Path
	}
	return fmt.Sprintf(oraclePromptTemplate, pageURL, domain, path)
}

// ParseOracleReply 宽容地解析预言机回复
// 先整体按数字解析, 失败时正则提取第一个带符号数字, 最后钳制到[-50,50]
func ParseOracleReply(reply string) (float64, bool) {
	text := strings.TrimSpace(reply)

	if v, err := strconv.ParseFloat(text, 64); err == nil {
		return clampOracle(v), true
	}

	if m := firstNumberPattern.FindString(text); m != "" {
		if v, err := strconv.ParseFloat(m, 64); err == nil {
			return clampOracle(v), true
		}
	}
	return 0, false
}

func clampOracle(v float64) float64 {
	if v < oracleMin {
		return oracleMin
	}
	if v > oracleMax {
		return oracleMax
	}
	return v
}
