package fstree

import (
	"errors"
	"fmt"
	"io/fs"
)

// 错误类别，可用 errors.Is 判断
var (
	ErrNotFound     = errors.New("not found")
	ErrAccessDenied = errors.New("access denied")
	ErrIO           = errors.New("i/o error")
	ErrExcluded     = errors.New("excluded")
	ErrNotDirectory = errors.New("not a directory")
	ErrClosed       = errors.New("coordinator closed")
)

// PathError 记录失败的操作、路径和错误类别
type PathError struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *PathError) Error() string {
	if e.Err == nil || e.Err == e.Kind {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
}

func (e *PathError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// newPathError 将底层错误归入一个错误类别
func newPathError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PathError
	if errors.As(err, &pe) {
		return err
	}
	kind := ErrIO
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		kind = ErrAccessDenied
	}
	return &PathError{Op: op, Path: path, Kind: kind, Err: err}
}
