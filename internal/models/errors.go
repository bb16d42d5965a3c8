package models

import (
	"errors"
	"fmt"
)

// ErrNoHomepage 候选集中不存在首页, 置顶无法执行(非致命, 由调用方决定如何提示)
var ErrNoHomepage = errors.New("候选集中未找到首页")

// TransportError 网络层错误(超时/连接失败/非2xx状态码)
type TransportError struct {
	URL        string
	StatusCode int // 0 表示未收到响应
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("请求失败 [%s]: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("请求失败 [%s]: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// BlockedError 403在身份轮换全部失败后仍然存在
// 这是唯一要求终止整个运行的错误: 目标站点在主动封禁自动化访问
type BlockedError struct {
	URL      string
	Attempts int // 已尝试的身份数量
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("目标站点拒绝访问 [%s]: %d个备用身份均被403拒绝", e.URL, e.Attempts)
}

// MalformedSitemapError 站点地图内容不是有效XML
// 常见原因是被封禁或重定向后返回了HTML错误页
type MalformedSitemapError struct {
	URL    string
	Reason string
}

func (e *MalformedSitemapError) Error() string {
	return fmt.Sprintf("站点地图格式错误 [%s]: %s", e.URL, e.Reason)
}

// ConfigError 配置文件加载或解析错误
type ConfigError struct {
	FilePath string
	Cause    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("配置错误 [%s]: %v", e.FilePath, e.Cause)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}
