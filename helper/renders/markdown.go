package renders

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer 将 Markdown 渲染为终端文本
type MarkdownRenderer struct {
	renderer *glamour.TermRenderer
}

// NewMarkdownRenderer 创建渲染器，style 为空时根据终端自动选择
func NewMarkdownRenderer(style string) (*MarkdownRenderer, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(120)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("初始化 Markdown 渲染器失败: %w", err)
	}
	return &MarkdownRenderer{renderer: renderer}, nil
}

// Render 渲染 Markdown 文本
func (m *MarkdownRenderer) Render(content string) (string, error) {
	out, err := m.renderer.Render(content)
	if err != nil {
		return "", fmt.Errorf("渲染 Markdown 失败: %w", err)
	}
	return out, nil
}

// Fprint 渲染并写入 w，渲染失败时原样输出
func (m *MarkdownRenderer) Fprint(w io.Writer, content string) error {
	out, err := m.Render(content)
	if err != nil {
		out = content
	}
	_, werr := io.WriteString(w, out)
	if werr != nil {
		return werr
	}
	return err
}

// Table 生成两列的 Markdown 表格
func Table(header [2]string, rows [][2]string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "| %s | %s |\n|---|---|\n", escape(header[0]), escape(header[1]))
	for _, r := range rows {
		fmt.Fprintf(&sb, "| %s | %s |\n", escape(r[0]), escape(r[1]))
	}
	return sb.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
