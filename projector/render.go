package projector

import (
	"fmt"
	"strings"

	"github.com/sjzsdu/explorer/fstree"
)

// RenderOptions 控制文本渲染
type RenderOptions struct {
	Title    string // 首行标题，为空时不输出
	ShowSize bool   // 文件后显示大小
}

// Render 将先序序列渲染为类似 Unix tree 命令的文本。
// 序列中的根节点不带连接线，其余节点按深度缩进。
func Render(seq []*fstree.Node, opts RenderOptions) string {
	var result strings.Builder
	if opts.Title != "" {
		result.WriteString(opts.Title + "\n")
	}
	if len(seq) == 0 {
		return result.String()
	}

	base := seq[0].Depth()
	for _, n := range seq {
		base = min(base, n.Depth())
	}
	// 根节点所在的层级不画连接线
	rootDepth := base - 1
	if seq[0].Parent() == nil {
		rootDepth = base
	}

	last := lastSiblings(seq)
	// lastAt[d] 表示第 d 层当前祖先是否为最后一个兄弟
	lastAt := make(map[int]bool)
	for i, n := range seq {
		d := n.Depth()
		lastAt[d] = last[i]
		if d > rootDepth {
			for l := rootDepth + 1; l < d; l++ {
				if lastAt[l] {
					result.WriteString("    ")
				} else {
					result.WriteString("│   ")
				}
			}
			if last[i] {
				result.WriteString("└── ")
			} else {
				result.WriteString("├── ")
			}
		}
		result.WriteString(Label(n, opts.ShowSize))
		result.WriteString("\n")
	}
	return result.String()
}

// Label 返回节点的显示名称：目录带 "/"，加载失败时带 "[!]"
func Label(n *fstree.Node, showSize bool) string {
	if n.IsDir() {
		label := n.Name() + "/"
		if n.LoadState() == fstree.Failed {
			label += " [!]"
		}
		return label
	}
	if showSize {
		if info := n.Info(); info != nil {
			return fmt.Sprintf("%s (%s)", n.Name(), FormatSize(info.Size()))
		}
	}
	return n.Name()
}

// lastSiblings 计算每个节点是否是其父节点在序列中的最后一个子节点
func lastSiblings(seq []*fstree.Node) []bool {
	last := make([]bool, len(seq))
	hasNext := make(map[int]bool)
	for i := len(seq) - 1; i >= 0; i-- {
		d := seq[i].Depth()
		last[i] = !hasNext[d]
		hasNext[d] = true
		for k := range hasNext {
			if k > d {
				delete(hasNext, k)
			}
		}
	}
	return last
}

// FormatSize 将字节数格式化为易读的大小
func FormatSize(size int64) string {
	switch {
	case size < 1024:
		return fmt.Sprintf("%d B", size)
	case size < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	case size < 1024*1024*1024:
		return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
	default:
		return fmt.Sprintf("%.1f GB", float64(size)/(1024*1024*1024))
	}
}
