// Package tui 提供基于 bubbletea 的目录浏览界面，显示投影出的可见序列。
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sjzsdu/explorer/fstree"
	"github.com/sjzsdu/explorer/projector"
)

// ChangedMsg 通知界面投影已变化
type ChangedMsg struct{}

// Model 是浏览界面的 bubbletea 模型。
// 节点的修改都投递到协调器执行，界面只读取投影。
type Model struct {
	projector *projector.Projector
	coord     *fstree.Coordinator
	title     string

	seq     []*fstree.Node
	cursor  int
	focused *fstree.Node

	viewport viewport.Model
	help     help.Model
	keys     keyMap
	styles   Styles
	ready    bool
}

// New 创建界面模型
func New(p *projector.Projector, coord *fstree.Coordinator, title string) Model {
	m := Model{
		projector: p,
		coord:     coord,
		title:     title,
		viewport:  viewport.New(80, 20),
		help:      help.New(),
		keys:      defaultKeyMap(),
		styles:    DefaultStyles(),
	}
	m.sync()
	return m
}

// WithStyles 替换样式
func (m Model) WithStyles(s Styles) Model {
	m.styles = s
	return m
}

// Init 实现 tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update 实现 tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ChangedMsg:
		m.sync()
		return m, nil

	case tea.WindowSizeMsg:
		m.ready = true
		m.viewport.Width = msg.Width
		m.viewport.Height = max(1, msg.Height-2)
		m.help.Width = msg.Width
		m.ensureFocusedVisible()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.moveTo(m.cursor - 1)
		case key.Matches(msg, m.keys.Down):
			m.moveTo(m.cursor + 1)
		case key.Matches(msg, m.keys.Toggle):
			if n := m.focused; n != nil && n.IsDir() {
				m.post(func() { n.SetActive(!n.Active()) })
			}
		case key.Matches(msg, m.keys.Expand):
			if n := m.focused; n != nil && n.IsDir() {
				if n.Active() {
					m.moveTo(m.cursor + 1)
				} else {
					m.post(func() { n.SetActive(true) })
				}
			}
		case key.Matches(msg, m.keys.Collapse):
			if n := m.focused; n != nil {
				if n.IsDir() && n.Active() {
					m.post(func() { n.SetActive(false) })
				} else if i := indexOf(m.seq, n.Parent()); i >= 0 {
					m.moveTo(i)
				}
			}
		case key.Matches(msg, m.keys.Reload):
			if n := m.focused; n != nil {
				m.post(n.Reload)
			}
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View 实现 tea.Model
func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render(m.title))
	sb.WriteString("\n")

	lines := m.lines()
	if m.ready {
		start := min(m.viewport.YOffset, len(lines))
		end := min(start+m.viewport.Height, len(lines))
		lines = lines[start:end]
	}
	sb.WriteString(strings.Join(lines, "\n"))
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

// Focused 返回当前选中的节点
func (m Model) Focused() *fstree.Node {
	return m.focused
}

// Cursor 返回选中行号
func (m Model) Cursor() int {
	return m.cursor
}

func (m Model) post(fn func()) {
	m.coord.Post(fn)
}

// sync 从投影读取新序列，选中节点仍可见时保持选中
func (m *Model) sync() {
	m.seq = m.projector.Sequence()
	if i := indexOf(m.seq, m.focused); i >= 0 {
		m.cursor = i
	} else {
		m.cursor = min(m.cursor, len(m.seq)-1)
	}
	m.moveTo(m.cursor)
}

func (m *Model) moveTo(i int) {
	if len(m.seq) == 0 {
		m.cursor, m.focused = 0, nil
		return
	}
	i = max(0, min(i, len(m.seq)-1))
	m.cursor = i
	m.focused = m.seq[i]
	m.ensureFocusedVisible()
}

func (m *Model) ensureFocusedVisible() {
	if m.viewport.Height <= 0 {
		return
	}
	if m.cursor < m.viewport.YOffset {
		m.viewport.YOffset = m.cursor
	}
	if m.cursor >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.YOffset = m.cursor - m.viewport.Height + 1
	}
}

func (m Model) lines() []string {
	if len(m.seq) == 0 {
		return []string{m.styles.Status.Render("(empty)")}
	}
	base := m.seq[0].Depth()
	for _, n := range m.seq {
		base = min(base, n.Depth())
	}

	lines := make([]string, len(m.seq))
	for i, n := range m.seq {
		line := strings.Repeat("  ", n.Depth()-base) + expander(n) + m.label(n)
		if i == m.cursor {
			line = m.styles.Focused.Render(line)
		}
		lines[i] = line
	}
	return lines
}

func (m Model) label(n *fstree.Node) string {
	if !n.IsDir() {
		return m.styles.File.Render(n.Name())
	}
	switch n.LoadState() {
	case fstree.Loading:
		return m.styles.Dir.Render(n.Name()) + m.styles.Status.Render(" …")
	case fstree.Failed:
		return m.styles.Failed.Render(fmt.Sprintf("%s [!]", n.Name()))
	}
	return m.styles.Dir.Render(n.Name())
}

func expander(n *fstree.Node) string {
	switch {
	case !n.IsDir():
		return "  "
	case n.Active():
		return "▼ "
	default:
		return "▶ "
	}
}

func indexOf(seq []*fstree.Node, n *fstree.Node) int {
	if n == nil {
		return -1
	}
	for i, s := range seq {
		if s == n {
			return i
		}
	}
	return -1
}
