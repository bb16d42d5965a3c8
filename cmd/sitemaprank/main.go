package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/RecoveryAshes/SiteMapRank/internal/core"
	"github.com/RecoveryAshes/SiteMapRank/internal/models"
	"github.com/RecoveryAshes/SiteMapRank/internal/utils"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// 命令行参数
var (
	// 全局参数
	configFile string
	verbose    bool
	quiet      bool
	logLevel   string

	// 排序参数
	siteURL      string
	pageCount    int
	useOracle    bool
	ecommerce    bool
	skipProducts bool

	// 流程控制参数
	autoConfirm    bool
	extractContent bool
)

var rootCmd = &cobra.Command{
	Use:   "sitemaprank",
	Short: "站点地图页面重要性排序工具",
	Long: `SiteMapRank - 基于站点地图的页面重要性排序工具 (Go版本)

读取站点的sitemap.xml, 结合首页导航和核心业务词汇对所有页面评分,
产出一份确定性的重要页面清单, 支持:
  • 站点地图索引递归展开
  • 首页导航探测和核心词汇提取
  • 多层关键词评分和可选的大模型评分预言机
  • 电商站点检测和商品页跳过
  • 排序结果的内容抓取和markdown汇总

使用示例:
  # 基本用法
  sitemaprank -u https://example.com

  # 取前20个页面并启用预言机
  sitemaprank -u https://example.com -n 20 --use-oracle

  # 电商站点, 跳过商品页, 免确认直接抓取内容
  sitemaprank -u https://shop.example.com --skip-products --yes --extract

版本: ` + Version + `
构建时间: ` + BuildTime,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}

		logConfig := utils.LogConfig{
			Level:      config.Logging.Level,
			LogDir:     config.Logging.LogDir,
			Quiet:      quiet,
			MaxSize:    config.Logging.Rotation.MaxSize,
			MaxBackups: config.Logging.Rotation.MaxBackups,
			MaxAge:     config.Logging.Rotation.MaxAge,
			Compress:   config.Logging.Rotation.Compress,
		}

		// 命令行参数覆盖配置文件
		if logLevel != "" {
			logConfig.Level = logLevel
		}
		if verbose {
			logConfig.Level = "debug"
		}

		if err := utils.InitLogger(logConfig); err != nil {
			return fmt.Errorf("初始化日志系统失败: %w", err)
		}

		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if siteURL == "" {
			return cmd.Help()
		}

		if err := ValidateFlags(siteURL, pageCount, logLevel); err != nil {
			return err
		}

		config, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}
		config.MergeCLIFlags(pageCount, useOracle, ecommerce, skipProducts)

		// Ctrl+C优雅退出
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		go func() {
			sig := <-sigChan
			utils.Warnf("收到中断信号: %v, 正在取消...", sig)
			cancel()
		}()

		pipeline, err := core.NewPipeline(config, siteURL)
		if err != nil {
			return fmt.Errorf("创建排序流水线失败: %w", err)
		}

		report, err := pipeline.Execute(ctx)
		if err != nil {
			return fmt.Errorf("排序失败: %w", err)
		}

		printRankTable(report)

		var contents []*models.PageContent
		if extractContent {
			if autoConfirm || confirm("是否抓取以上页面的内容? [y/N] ") {
				contents = pipeline.ExtractContent(ctx, report)
			} else {
				utils.Info("已跳过内容抓取")
			}
		}

		if err := pipeline.WriteReports(report, contents); err != nil {
			return fmt.Errorf("写出报告失败: %w", err)
		}

		utils.Info("✨ 排序任务完成!")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("SiteMapRank %s\n", Version)
		fmt.Printf("构建时间: %s\n", BuildTime)
		fmt.Println("Go实现版本 - 站点地图页面重要性排序工具")
	},
}

// printRankTable 打印排序结果表
func printRankTable(report *models.RankReport) {
	fmt.Println("\n==================================================")
	fmt.Printf("📊 页面重要性排序 - %s\n", report.Domain)
	fmt.Println("==================================================")
	fmt.Printf("%-4s %-8s %-5s %-4s %-5s %-8s %s\n",
		"#", "分数", "类型", "导航", "深度", "关键词", "URL")

	for i, page := range report.Primary {
		pageType := "Page"
		if page.IsPost {
			pageType = "Post"
		}
		fmt.Printf("%-4d %-8.2f %-5s %-4s %-5d %-8s %s\n",
			i+1, page.Score, pageType,
			mark(page.InNavigation), page.Depth,
			mark(page.HasKeywordMatch), displayURL(page.URL))
	}

	fmt.Println("--------------------------------------------------")
	fmt.Printf("✅ URL总数: %d (去重移除%d)\n", report.Stats.TotalURLs, report.Stats.Duplicates)
	fmt.Printf("✅ 普通页面: %d, 博客文章: %d\n", report.Stats.RegularPages, report.Stats.BlogPosts)
	if report.Stats.SkippedProducts > 0 {
		fmt.Printf("✅ 跳过的商品URL: %d\n", report.Stats.SkippedProducts)
	}
	fmt.Printf("✅ 导航页面: %d, 核心词汇: %d\n", report.Stats.NavigationURLs, report.Stats.VocabularyTerms)
	if !report.HomepagePinned {
		fmt.Println("⚠️  候选集合中没有首页")
	}
	fmt.Printf("⏱️  总耗时: %.1f秒\n", report.Stats.Duration)
	fmt.Println("==================================================")
}

func mark(b bool) string {
	if b {
		return "Y"
	}
	return ""
}

func displayURL(rawURL string) string {
	if len(rawURL) > 80 {
		return rawURL[:77] + "..."
	}
	return rawURL
}

// confirm 读取一行y/n确认
func confirm(prompt string) bool {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "详细输出模式")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "安静模式 (控制台只输出警告以上)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (trace|debug|info|warn|error)")

	// 排序参数
	rootCmd.Flags().StringVarP(&siteURL, "url", "u", "", "目标站点或站点地图URL (必需)")
	rootCmd.Flags().IntVarP(&pageCount, "count", "n", 10, "主清单页面数 (1-50)")
	rootCmd.Flags().BoolVar(&useOracle, "use-oracle", false, "启用大模型评分预言机")
	rootCmd.Flags().BoolVar(&ecommerce, "ecommerce", false, "强制启用电商评分扩展")
	rootCmd.Flags().BoolVar(&skipProducts, "skip-products", false, "跳过商品站点地图分支")

	// 流程控制参数
	rootCmd.Flags().BoolVarP(&autoConfirm, "yes", "y", false, "跳过交互确认")
	rootCmd.Flags().BoolVar(&extractContent, "extract", false, "排序后抓取主清单页面内容")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
