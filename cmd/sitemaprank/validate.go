package main

import (
	"fmt"

	"github.com/RecoveryAshes/SiteMapRank/internal/models"
)

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

// ValidateFlags 验证命令行标志
func ValidateFlags(siteURL string, pageCount int, logLevel string) error {
	if siteURL != "" {
		if _, err := models.NormalizeSiteURL(siteURL); err != nil {
			return fmt.Errorf("无效的目标URL: %w", err)
		}
	}

	if pageCount < 1 || pageCount > 50 {
		return fmt.Errorf("页面数必须在1-50之间,当前值: %d", pageCount)
	}

	if logLevel != "" && !validLogLevels[logLevel] {
		return fmt.Errorf("无效的日志级别: %s (可选: trace|debug|info|warn|error)", logLevel)
	}

	return nil
}
