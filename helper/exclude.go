package helper

import (
	"path/filepath"
	"strings"
)

// DefaultExcludes 默认不进入的系统和开发工具目录
var DefaultExcludes = []string{
	".git",
	".svn",
	".hg",
	".DS_Store",
}

// Excluder 按名称的 glob 规则过滤目录项
type Excluder struct {
	patterns []string
}

// NewExcluder 创建过滤器，空白规则会被忽略
func NewExcluder(patterns ...string) *Excluder {
	e := &Excluder{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		e.patterns = append(e.patterns, p)
	}
	return e
}

// ParseExcludes 解析逗号分隔的规则列表
func ParseExcludes(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Patterns 返回规则副本
func (e *Excluder) Patterns() []string {
	if e == nil {
		return nil
	}
	return append([]string(nil), e.patterns...)
}

// Excluded 判断名称是否命中任一规则。nil 过滤器不排除任何内容。
func (e *Excluder) Excluded(name string) bool {
	if e == nil {
		return false
	}
	for _, p := range e.patterns {
		if p == name {
			return true
		}
		if ok, err := filepath.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}
