package helper

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sjzsdu/explorer/share"
)

// RelSegments 返回 path 相对 root 的路径分段。
// path 不在 root 之下时 ok 为 false；path 等于 root 时返回空切片。
func RelSegments(root, path string) (segments []string, ok bool) {
	root = filepath.Clean(root)
	path = filepath.Clean(path)
	if path == root {
		return nil, true
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return nil, false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return nil, false
	}

	for _, seg := range strings.Split(rel, "/") {
		if seg == "" || seg == "." {
			continue
		}
		segments = append(segments, seg)
	}
	return segments, true
}

// BaseName 返回路径最后一段；没有可用的段（如 "/"）时返回整个路径
func BaseName(path string) string {
	name := filepath.Base(path)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return path
	}
	return name
}

// GetPath 返回用户目录下 .explorer 中的文件路径，name 为空时返回目录本身
func GetPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	if name == "" {
		return filepath.Join(home, share.PATH)
	}
	return filepath.Join(home, share.PATH, name)
}
