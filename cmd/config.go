package cmd

import (
	"fmt"

	"github.com/sjzsdu/explorer/config"
	"github.com/sjzsdu/explorer/lang"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: lang.T("Set config"),
	Long:  lang.T("Set global configuration"),
	RunE:  handleConfigCommand,
}

var showAllConfigs bool

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().BoolVarP(&showAllConfigs, "list", "l", false, lang.T("List all configurations"))

	// 通过遍历 ConfigKeys 自动添加所有配置项
	for _, key := range config.GetAllConfigKeys() {
		configCmd.Flags().String(key, config.GetConfig(key), lang.T(config.GetConfigDescription(key)))
	}
}

func handleConfigCommand(cmd *cobra.Command, args []string) error {
	if err := config.LoadConfig(); err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	out := cmd.OutOrStdout()
	if showAllConfigs {
		fmt.Fprintln(out, lang.T("Current configurations:"))
		for _, key := range config.GetAllConfigKeys() {
			if value := config.GetConfig(key); value != "" {
				fmt.Fprintf(out, "%s=%s\n", config.GetEnvKey(key), value)
			}
		}
		return nil
	}

	configChanged := false
	for _, key := range config.GetAllConfigKeys() {
		flag := cmd.Flag(key)
		if flag == nil || !flag.Changed {
			continue
		}
		value, _ := cmd.Flags().GetString(key)
		if err := config.SetConfig(key, value); err != nil {
			return err
		}
		configChanged = true
	}

	if configChanged {
		if err := config.SaveConfig(); err != nil {
			return fmt.Errorf("error saving config: %w", err)
		}
	}
	return nil
}
