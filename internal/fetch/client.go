package fetch

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/RecoveryAshes/SiteMapRank/internal/models"
	"github.com/RecoveryAshes/SiteMapRank/internal/utils"
	"github.com/andybalholm/brotli"
)

const (
	// MaxBodySize 响应体大小上限 (20MB), 防止异常站点地图撑爆内存
	MaxBodySize = 20 * 1024 * 1024

	// retryPause 最后一个最小头部身份尝试前的固定停顿
	retryPause = 2 * time.Second
)

// Response 一次成功请求的结果
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Fetcher HTTP请求协作者
// 负责超时控制、403身份轮换和基础头部管理; 解压由DecodeBody单独处理
type Fetcher struct {
	client     *http.Client
	identities []ClientIdentity
}

// NewFetcher 创建请求器
// 跳过TLS证书验证, 允许访问证书配置不规范的目标站点
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: true,
				},
				// 手动声明Accept-Encoding并自行解压, 禁用透明解压
				DisableCompression: true,
			},
		},
		identities: DefaultIdentities,
	}
}

// SetIdentities 替换身份列表 (测试用)
func (f *Fetcher) SetIdentities(identities []ClientIdentity) {
	f.identities = identities
}

// Fetch 抓取一个URL
// 403响应触发身份轮换: 按顺序尝试备用身份, 第一个成功的生效;
// 全部被拒绝时返回BlockedError, 这是整个运行的终止条件
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	rotator := NewIdentityRotator(f.identities...)
	identity := rotator.Begin()

	for {
		resp, err := f.doRequest(ctx, rawURL, identity)
		if err != nil {
			return nil, &models.TransportError{URL: rawURL, Err: err}
		}

		if resp.StatusCode == http.StatusForbidden {
			utils.Warnf("403 Forbidden [%s] (身份: %s), 尝试备用身份...", rawURL, identity.Name)
			next, ok := rotator.Advance()
			if !ok {
				return nil, &models.BlockedError{URL: rawURL, Attempts: rotator.Attempts()}
			}
			identity = next
			// 最小头部身份是最后手段, 先停顿再试
			if identity.Minimal {
				select {
				case <-time.After(retryPause):
				case <-ctx.Done():
					return nil, &models.TransportError{URL: rawURL, Err: ctx.Err()}
				}
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 400 {
			return nil, &models.TransportError{URL: rawURL, StatusCode: resp.StatusCode}
		}

		rotator.MarkSuccess()
		if rotator.Attempts() > 1 {
			utils.Infof("备用身份成功 [%s]: %s", rawURL, identity.Name)
		}
		return resp, nil
	}
}

// doRequest 用指定身份执行一次请求
func (f *Fetcher) doRequest(ctx context.Context, rawURL string, identity ClientIdentity) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", identity.UserAgent)
	if !identity.Minimal {
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.5")
		req.Header.Set("Accept-Encoding", "gzip, deflate, br")
		req.Header.Set("Connection", "keep-alive")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// DecodeBody 解压响应体
// 先看Content-Encoding, 再按魔数嗅探(部分服务器声明错误或不声明);
// 解压失败时退回原始内容而不报错, 格式问题交给上层的XML校验去暴露
func DecodeBody(header http.Header, body []byte) []byte {
	encoding := strings.ToLower(strings.TrimSpace(header.Get("Content-Encoding")))

	looksGzip := len(body) >= 2 && body[0] == 0x1f && body[1] == 0x8b

	switch {
	case encoding == "br":
		if decoded, err := decodeBrotli(body); err == nil {
			return decoded
		}
		utils.Debugf("Brotli解压失败, 使用原始内容")
		return body

	case encoding == "gzip" || looksGzip:
		if decoded, err := decodeGzip(body); err == nil {
			return decoded
		}
		utils.Debugf("gzip解压失败, 使用原始内容")
		return body

	case encoding == "deflate":
		if decoded, err := decodeDeflate(body); err == nil {
			return decoded
		}
		utils.Debugf("deflate解压失败, 使用原始内容")
		return body

	default:
		return body
	}
}

func decodeGzip(body []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

func decodeDeflate(body []byte) ([]byte, error) {
	reader := flate.NewReader(bytes.NewReader(body))
	defer reader.Close()
	return io.ReadAll(reader)
}

func decodeBrotli(body []byte) ([]byte, error) {
	return io.ReadAll(brotli.NewReader(bytes.NewReader(body)))
}
