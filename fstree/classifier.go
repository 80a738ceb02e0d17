package fstree

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/sjzsdu/explorer/helper"
	"github.com/sjzsdu/explorer/helper/coroutine"
	"github.com/spf13/afero"
)

// Entry 是一个已分类的文件系统路径
type Entry struct {
	Path    string
	Name    string
	IsDir   bool
	Symlink bool
	Info    fs.FileInfo
}

// Lister 负责路径分类和目录枚举，可在任意协程中调用
type Lister interface {
	Classify(path string) (Entry, error)
	ReadDir(ctx context.Context, path string) ([]Entry, error)
}

// Classifier 基于 afero 文件系统实现 Lister
type Classifier struct {
	fs       afero.Fs
	workers  int
	excluder *helper.Excluder
}

// ClassifierOption 配置 Classifier
type ClassifierOption func(*Classifier)

// WithFs 指定文件系统，默认使用操作系统文件系统
func WithFs(fsys afero.Fs) ClassifierOption {
	return func(c *Classifier) {
		if fsys != nil {
			c.fs = fsys
		}
	}
}

// WithWorkers 指定枚举目录时的并发分类数
func WithWorkers(n int) ClassifierOption {
	return func(c *Classifier) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithExcluder 指定按名称排除的规则
func WithExcluder(e *helper.Excluder) ClassifierOption {
	return func(c *Classifier) {
		c.excluder = e
	}
}

// NewClassifier 创建分类器
func NewClassifier(opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		fs:      afero.NewOsFs(),
		workers: coroutine.DefaultMaxWorkers(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fs 返回底层文件系统
func (c *Classifier) Fs() afero.Fs {
	return c.fs
}

// Classify 判断路径是目录还是文件。符号链接按目标分类，
// 目标不存在的链接视为文件。
func (c *Classifier) Classify(path string) (Entry, error) {
	path = filepath.Clean(path)
	name := helper.BaseName(path)
	if c.excluder.Excluded(name) {
		return Entry{}, &PathError{Op: "classify", Path: path, Kind: ErrExcluded}
	}

	var symlink bool
	if lst, ok := c.fs.(afero.Lstater); ok {
		if info, _, err := lst.LstatIfPossible(path); err == nil {
			symlink = info.Mode()&os.ModeSymlink != 0
		}
	}

	info, err := c.fs.Stat(path)
	if err != nil {
		if !symlink {
			return Entry{}, newPathError("classify", path, err)
		}
		// 失效的符号链接
		lst := c.fs.(afero.Lstater)
		info, _, err = lst.LstatIfPossible(path)
		if err != nil {
			return Entry{}, newPathError("classify", path, err)
		}
	}

	return Entry{
		Path:    path,
		Name:    name,
		IsDir:   info.IsDir(),
		Symlink: symlink,
		Info:    info,
	}, nil
}

// ReadDir 列出目录的直接子项并并发分类。排除的名称和枚举期间消失或
// 不可访问的子项会被跳过；目录本身不可读时返回错误。
func (c *Classifier) ReadDir(ctx context.Context, path string) ([]Entry, error) {
	path = filepath.Clean(path)
	f, err := c.fs.Open(path)
	if err != nil {
		return nil, newPathError("readdir", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, newPathError("readdir", path, err)
	}
	if !info.IsDir() {
		f.Close()
		return nil, &PathError{Op: "readdir", Path: path, Kind: ErrNotDirectory}
	}
	names, err := f.Readdirnames(-1)
	f.Close()
	if err != nil {
		return nil, newPathError("readdir", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kept := names[:0]
	for _, name := range names {
		if !c.excluder.Excluded(name) {
			kept = append(kept, name)
		}
	}
	sort.Strings(kept)

	results := coroutine.Map(ctx, c.workers, kept, func(ctx context.Context, name string) (Entry, error) {
		return c.Classify(filepath.Join(path, name))
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			if errors.Is(r.Err, context.Canceled) || errors.Is(r.Err, context.DeadlineExceeded) {
				return nil, r.Err
			}
			continue
		}
		entries = append(entries, r.Value)
	}
	return entries, nil
}
