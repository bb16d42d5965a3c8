package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/RecoveryAshes/SiteMapRank/internal/models"
)

// Config 应用程序配置
type Config struct {
	Rank    models.RankConfig `mapstructure:"rank"`
	Logging LoggingConfig     `mapstructure:"logging"`
	Output  OutputConfig      `mapstructure:"output"`
	Oracle  OracleConfig      `mapstructure:"oracle"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig 日志轮转配置
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	BaseDir          string `mapstructure:"base_dir"`
	DomainSeparation bool   `mapstructure:"domain_separation"`
}

// OracleConfig 评分预言机配置
// API密钥从环境变量读取, 不进配置文件
type OracleConfig struct {
	APIKeyEnv string `mapstructure:"api_key_env"`
}

// LoadConfig 加载配置文件
// .env文件存在时先加载, 供预言机API密钥等环境变量使用
func LoadConfig(configPath string) (*Config, error) {
	// .env不存在不算错误
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath("./configs")
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".sitemaprank"))
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// 配置文件不存在时使用默认值
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	return &config, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	// 排序配置默认值
	v.SetDefault("rank.page_count", 10)
	v.SetDefault("rank.fetch_timeout", 30)
	v.SetDefault("rank.request_delay", 2)
	v.SetDefault("rank.use_oracle", false)
	v.SetDefault("rank.ecommerce", false)
	v.SetDefault("rank.skip_products", false)
	v.SetDefault("rank.max_workers", 0)

	// 日志配置默认值
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)

	// 输出配置默认值
	v.SetDefault("output.base_dir", "output")
	v.SetDefault("output.domain_separation", true)

	// 预言机默认值
	v.SetDefault("oracle.api_key_env", "ANTHROPIC_API_KEY")
}

// OracleAPIKey 读取预言机API密钥, 未配置时返回空串
func (c *Config) OracleAPIKey() string {
	env := c.Oracle.APIKeyEnv
	if env == "" {
		env = "ANTHROPIC_API_KEY"
	}
	return os.Getenv(env)
}

// OutputDirFor 计算某个域名的输出目录
func (c *Config) OutputDirFor(domain string) string {
	if c.Output.DomainSeparation && domain != "" {
		return filepath.Join(c.Output.BaseDir, domain)
	}
	return c.Output.BaseDir
}

// MergeCLIFlags 合并命令行参数到配置, 命令行优先于配置文件
func (c *Config) MergeCLIFlags(pageCount int, useOracle, ecommerce, skipProducts bool) {
	if pageCount > 0 {
		c.Rank.PageCount = pageCount
	}
	if useOracle {
		c.Rank.UseOracle = true
	}
	if ecommerce {
		c.Rank.Ecommerce = true
	}
	if skipProducts {
		c.Rank.SkipProducts = true
	}
}
