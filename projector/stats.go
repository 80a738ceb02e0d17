package projector

import (
	"fmt"

	"github.com/sjzsdu/explorer/fstree"
)

// Statistics 可见序列的统计信息
type Statistics struct {
	TotalNodes     int   // 总节点数
	DirectoryCount int   // 目录数量
	FileCount      int   // 文件数量
	TotalSize      int64 // 文件总大小（字节）
	MaxDepth       int   // 最大深度
}

// Stats 统计序列中的节点
func Stats(seq []*fstree.Node) Statistics {
	stats := Statistics{}
	for _, n := range seq {
		stats.TotalNodes++
		stats.MaxDepth = max(stats.MaxDepth, n.Depth())
		if n.IsDir() {
			stats.DirectoryCount++
			continue
		}
		stats.FileCount++
		if info := n.Info(); info != nil {
			stats.TotalSize += info.Size()
		}
	}
	return stats
}

// String 返回统计信息的字符串表示
func (s Statistics) String() string {
	var sizeStr string
	if s.TotalSize < 1024 {
		sizeStr = fmt.Sprintf("%d bytes", s.TotalSize)
	} else {
		sizeStr = FormatSize(s.TotalSize)
	}
	return fmt.Sprintf("%d directories, %d files, %s total",
		s.DirectoryCount, s.FileCount, sizeStr)
}
