package fstree

import (
	"slices"
	"strings"
)

// Comparer 决定兄弟节点的顺序，返回负数表示 a 在前
type Comparer func(a, b *Node) int

// DefaultCompare 目录在前，名称按字节序
func DefaultCompare(a, b *Node) int {
	if a.IsDir() != b.IsDir() {
		if a.IsDir() {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Name(), b.Name())
}

// FoldCompare 目录在前，名称忽略大小写，相同时按字节序
func FoldCompare(a, b *Node) int {
	if a.IsDir() != b.IsDir() {
		if a.IsDir() {
			return -1
		}
		return 1
	}
	if c := strings.Compare(strings.ToLower(a.Name()), strings.ToLower(b.Name())); c != 0 {
		return c
	}
	return strings.Compare(a.Name(), b.Name())
}

func sortNodes(nodes []*Node, cmp Comparer) {
	slices.SortStableFunc(nodes, cmp)
}

// insertIndex 返回 n 在有序切片中的插入位置
func insertIndex(nodes []*Node, n *Node, cmp Comparer) int {
	i, _ := slices.BinarySearchFunc(nodes, n, cmp)
	return i
}
