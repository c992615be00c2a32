// =============================================================================
// MediaFlow 主入口
// =============================================================================
// 配置与凭证诊断工具
//
// 使用方法:
//
//	mediaflow validate                      # 校验配置
//	mediaflow validate --config config.yaml # 指定配置文件
//	mediaflow auth                          # 解析并打印凭证来源
//	mediaflow nodes                         # 列出内置节点类型
//	mediaflow version                       # 显示版本信息
//
// =============================================================================
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/BaSui01/mediaflow"
	"github.com/BaSui01/mediaflow/auth"
	"github.com/BaSui01/mediaflow/config"
	"github.com/BaSui01/mediaflow/node"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		runValidate(os.Args[2:])
	case "auth":
		runAuth(os.Args[2:])
	case "nodes":
		printNodes()
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// =============================================================================
// ✅ validate 命令
// =============================================================================

func runValidate(args []string) {
	cfg := loadConfig(args)

	fmt.Println("Configuration OK")
	fmt.Printf("  cache backend:   %s\n", cfg.Cache.Backend)
	if cfg.Storage.Bucket != "" {
		fmt.Printf("  storage bucket:  %s\n", cfg.Storage.Bucket)
	} else {
		fmt.Println("  storage bucket:  (not configured, media transfers inline)")
	}
	fmt.Printf("  grid columns:    %d\n", cfg.Grid.Columns)
	fmt.Printf("  log level:       %s\n", cfg.Log.Level)
}

// =============================================================================
// 🔑 auth 命令
// =============================================================================

func runAuth(args []string) {
	cfg := loadConfig(args)

	logger := mediaflow.NewLogger(cfg.Log)
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	identity, err := auth.NewResolver(logger).Resolve(ctx, cfg.Auth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Credential resolution failed: %v\n", err)
		os.Exit(1)
	}

	// 只打印来源与项目信息，凭证材料不落任何输出
	fmt.Printf("Resolved credential source: %s\n", identity.Source())
	fmt.Printf("  project:  %s\n", identity.ProjectID())
	fmt.Printf("  location: %s\n", identity.Location())
}

// =============================================================================
// 📋 nodes / version / help
// =============================================================================

func printNodes() {
	for _, t := range []string{
		node.TypeVeoVideo,
		node.TypeImagenImage,
		node.TypeLyriaAudio,
		node.TypeMediaAnalysis,
		node.TypeVideoDisplay,
		node.TypeAudioDisplay,
		node.TypeImageDisplay,
	} {
		fmt.Println(t)
	}
}

func printVersion() {
	fmt.Printf("MediaFlow %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`MediaFlow - Generative Media Workflow Nodes

Usage:
  mediaflow <command> [options]

Commands:
  validate  Load and validate configuration
  auth      Resolve credentials and print the selected source
  nodes     List built-in node types
  version   Show version information
  help      Show this help message

Options for 'validate' and 'auth':
  --config <path>   Path to configuration file (YAML)

Examples:
  mediaflow validate --config /etc/mediaflow/config.yaml
  mediaflow auth
  mediaflow nodes`)
}

// loadConfig 按命令行参数加载配置，失败直接退出
func loadConfig(args []string) *config.Config {
	fs := flag.NewFlagSet("mediaflow", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	loader := config.NewLoader()
	if *configPath != "" {
		loader = loader.WithConfigPath(*configPath)
	}

	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
