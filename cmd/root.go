package cmd

import (
	"fmt"
	"os"

	"github.com/sjzsdu/explorer/config"
	"github.com/sjzsdu/explorer/lang"
	"github.com/sjzsdu/explorer/logging"
	"github.com/sjzsdu/explorer/share"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	workDir         string
	excludePatterns []string
	debugMode       bool

	settings = config.DefaultSettings()
)

var RootCmd = rootCmd

var rootCmd = &cobra.Command{
	Use:   share.BUILDNAME,
	Short: lang.T("Explorer command line tool"),
	Long:  lang.T("Browse, print and watch a live directory tree"),
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	Run: func(cmd *cobra.Command, args []string) {
		// 没有参数时显示帮助信息
		if len(args) == 0 {
			cmd.Help()
			return
		}
		fmt.Fprintln(os.Stderr, lang.T("Invalid arguments")+": ", args)
		os.Exit(1)
	},
}

func Execute() {
	defer logging.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&workDir, "directory", "d", "", lang.T("Work directory path"))
	rootCmd.PersistentFlags().StringSliceVarP(&excludePatterns, "exclude", "x", []string{}, lang.T("Glob patterns to exclude"))
	rootCmd.PersistentFlags().BoolVarP(&debugMode, "debug", "v", false, lang.T("Debug mode"))

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		share.SetDebug(debugMode)

		loaded, err := config.Load()
		settings = loaded
		if share.GetDebug() {
			settings.LogLevel = "debug"
		}
		if len(excludePatterns) > 0 {
			settings.Exclude = append(settings.Exclude, excludePatterns...)
		}
		lang.SetLanguage(settings.Lang)

		if lerr := logging.Init(logging.Config{Level: settings.LogLevel, Format: settings.LogFormat}); lerr != nil {
			return lerr
		}
		if err != nil {
			// 配置错误不阻止运行，无效项使用默认值
			logging.L().Warn("configuration", zap.Error(err))
		}
		return nil
	}
}
