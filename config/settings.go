package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sjzsdu/explorer/helper"
	"github.com/sjzsdu/explorer/share"
)

// Settings 是配置文件和环境变量的类型化视图
type Settings struct {
	Lang         string
	Debounce     time.Duration
	Workers      int
	Exclude      []string
	LogLevel     string
	LogFormat    string
	Watch        string
	PollInterval time.Duration
	Sort         string // name 按名称，fold 忽略大小写
}

// DefaultSettings 返回默认设置
func DefaultSettings() Settings {
	return Settings{
		Lang:         share.DEFAULT_LANG,
		Debounce:     share.DEBOUNCE,
		Workers:      0,
		Exclude:      append([]string(nil), helper.DefaultExcludes...),
		LogLevel:     "info",
		LogFormat:    "console",
		Watch:        share.DEFAULT_WATCH,
		PollInterval: share.POLL_INTERVAL,
		Sort:         "name",
	}
}

// Load 读取当前配置并解析为 Settings。
// 无法解析的值会返回错误，其余字段仍保留默认值。
func Load() (Settings, error) {
	s := DefaultSettings()
	var errs []error

	if v := GetConfig(KeyLang); v != "" {
		s.Lang = v
	}
	if v := GetConfig(KeyDebounce); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", KeyDebounce, err))
		} else {
			s.Debounce = d
		}
	}
	if v := GetConfig(KeyWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", KeyWorkers, err))
		} else {
			s.Workers = n
		}
	}
	if v := GetConfig(KeyExclude); v != "" {
		s.Exclude = helper.ParseExcludes(v)
	}
	if v := GetConfig(KeyLogLevel); v != "" {
		s.LogLevel = v
	}
	if v := GetConfig(KeyLogFormat); v != "" {
		s.LogFormat = v
	}
	if v := GetConfig(KeyWatch); v != "" {
		if !IsValidConfigOption(KeyWatch, v) {
			errs = append(errs, fmt.Errorf("%s: unknown mode %q", KeyWatch, v))
		} else {
			s.Watch = v
		}
	}
	if v := GetConfig(KeyPollInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", KeyPollInterval, err))
		} else {
			s.PollInterval = d
		}
	}
	if v := GetConfig(KeySort); v != "" {
		if !IsValidConfigOption(KeySort, v) {
			errs = append(errs, fmt.Errorf("%s: unknown order %q", KeySort, v))
		} else {
			s.Sort = v
		}
	}

	if len(errs) > 0 {
		return s, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return s, nil
}
