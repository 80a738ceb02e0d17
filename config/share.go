package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrUnknownKey 不是已知的配置项
var ErrUnknownKey = errors.New("unknown config key")

// ConfigKeyInfo 存储配置键的相关信息
type ConfigKeyInfo struct {
	Description string   // 配置项描述
	Options     []string // 可选值，如果为空则表示没有限制
	Type        string   // 配置项类型，默认为 "string"，可以是 "duration", "int", "csv"
}

// 配置键常量定义
const (
	KeyLang         = "lang"
	KeyDebounce     = "debounce"
	KeyWorkers      = "workers"
	KeyExclude      = "exclude"
	KeyLogLevel     = "log_level"
	KeyLogFormat    = "log_format"
	KeyWatch        = "watch"
	KeyPollInterval = "poll_interval"
	KeySort         = "sort"
)

// ConfigKeys 存储所有配置键及其信息
var ConfigKeys = map[string]ConfigKeyInfo{
	KeyLang: {
		Description: "Set language",
		Options:     []string{"en", "zh"},
		Type:        "string",
	},
	KeyDebounce: {
		Description: "Set projection refresh debounce (e.g. 50ms)",
		Type:        "duration",
	},
	KeyWorkers: {
		Description: "Set directory enumeration workers",
		Type:        "int",
	},
	KeyExclude: {
		Description: "Set excluded name patterns (comma-separated list)",
		Type:        "csv",
	},
	KeyLogLevel: {
		Description: "Set log level",
		Options:     []string{"debug", "info", "warn", "error"},
		Type:        "string",
	},
	KeyLogFormat: {
		Description: "Set log format",
		Options:     []string{"console", "json"},
		Type:        "string",
	},
	KeyWatch: {
		Description: "Set filesystem watch mode",
		Options:     []string{"notify", "poll", "none"},
		Type:        "string",
	},
	KeyPollInterval: {
		Description: "Set poll watch interval (e.g. 2s)",
		Type:        "duration",
	},
	KeySort: {
		Description: "Set sibling sort order",
		Options:     []string{"name", "fold"},
		Type:        "string",
	},
}

// GetConfigDescription 获取配置键的描述
func GetConfigDescription(key string) string {
	if info, exists := ConfigKeys[key]; exists {
		return info.Description
	}
	return ""
}

// GetConfigOptions 获取配置键的可选值
func GetConfigOptions(key string) []string {
	if info, exists := ConfigKeys[key]; exists {
		return info.Options
	}
	return nil
}

// GetConfigType 获取配置键的类型
func GetConfigType(key string) string {
	if info, exists := ConfigKeys[key]; exists {
		return info.Type
	}
	return "string" // 默认类型为字符串
}

// IsValidConfigOption 检查给定的值是否是配置键的有效选项
func IsValidConfigOption(key, value string) bool {
	options := GetConfigOptions(key)
	if len(options) == 0 {
		// 如果没有定义选项，则认为所有值都有效
		return true
	}

	for _, option := range options {
		if option == value {
			return true
		}
	}
	return false
}

// ValidateConfigValue 按配置项的可选值和类型检查，空值表示恢复默认
func ValidateConfigValue(key, value string) error {
	info, ok := ConfigKeys[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if value == "" {
		return nil
	}
	if !IsValidConfigOption(key, value) {
		return fmt.Errorf("%s: %q (%s)", key, value, strings.Join(info.Options, ", "))
	}
	switch info.Type {
	case "duration":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	case "int":
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

// GetAllConfigKeys 获取所有配置键（已排序）
func GetAllConfigKeys() []string {
	keys := make([]string, 0, len(ConfigKeys))
	for key := range ConfigKeys {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
