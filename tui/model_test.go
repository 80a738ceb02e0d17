package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sjzsdu/explorer/fstree"
	"github.com/sjzsdu/explorer/projector"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	coord *fstree.Coordinator
	tree  *fstree.Tree
	p     *projector.Projector
}

func newEnv(t *testing.T) *env {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/r/a", 0o755))
	require.NoError(t, fs.MkdirAll("/r/b", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/r/a/x.txt", []byte("x"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/r/c.txt", []byte("c"), 0o644))

	coord := fstree.NewCoordinator()
	tree := fstree.NewTree(coord, fstree.WithLister(fstree.NewClassifier(fstree.WithFs(fs))))
	p := projector.New(coord, projector.WithDebounce(10*time.Millisecond))
	e := &env{coord: coord, tree: tree, p: p}
	t.Cleanup(coord.Close)
	t.Cleanup(func() { _ = coord.Do(context.Background(), tree.Close) })

	require.NoError(t, coord.Do(context.Background(), func() {
		p.Attach(tree)
		tree.SetRootPath("/r")
	}))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, tree.Expand(ctx, 1))
	return e
}

// wait 等待树加载完成且投影稳定
func (e *env) wait(t *testing.T, want int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.tree.Settle(ctx))
	require.Eventually(t, func() bool { return e.p.Len() == want }, 5*time.Second, 5*time.Millisecond)
}

func press(m Model, msg tea.KeyMsg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNavigation(t *testing.T) {
	e := newEnv(t)
	m := New(e.p, e.coord, "r")
	require.NotNil(t, m.Focused())
	assert.Equal(t, "a", m.Focused().Name())

	m = press(m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "b", m.Focused().Name())
	m = press(m, runes("j"))
	m = press(m, runes("j"))
	assert.Equal(t, "c.txt", m.Focused().Name())
	assert.Equal(t, 2, m.Cursor())
	m = press(m, runes("k"))
	assert.Equal(t, "b", m.Focused().Name())
}

func TestToggleExpandsDirectory(t *testing.T) {
	e := newEnv(t)
	m := New(e.p, e.coord, "r")

	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	e.wait(t, 4)
	next, _ := m.Update(ChangedMsg{})
	m = next.(Model)
	assert.Equal(t, "a", m.Focused().Name())
	assert.Contains(t, m.View(), "x.txt")
	assert.Contains(t, m.View(), "▼ ")

	// 子节点上按左键回到父节点，再按左键收起
	m = press(m, runes("j"))
	assert.Equal(t, "x.txt", m.Focused().Name())
	m = press(m, runes("h"))
	assert.Equal(t, "a", m.Focused().Name())
	m = press(m, runes("h"))
	e.wait(t, 3)
	next, _ = m.Update(ChangedMsg{})
	m = next.(Model)
	assert.NotContains(t, m.View(), "x.txt")
	assert.Equal(t, "a", m.Focused().Name())
}

func TestFocusSurvivesRemoval(t *testing.T) {
	e := newEnv(t)
	m := New(e.p, e.coord, "r")
	m = press(m, runes("j"))
	m = press(m, runes("j"))
	require.Equal(t, "c.txt", m.Focused().Name())

	require.NoError(t, e.coord.Do(context.Background(), func() {
		e.tree.Root().RemoveChild("/r/c.txt")
	}))
	next, _ := m.Update(ChangedMsg{})
	m = next.(Model)
	assert.Equal(t, "b", m.Focused().Name())
	assert.Equal(t, 1, m.Cursor())
}

func TestViewAndQuit(t *testing.T) {
	e := newEnv(t)
	m := New(e.p, e.coord, "r")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 4})
	m = next.(Model)

	view := m.View()
	assert.Contains(t, view, "▶ ")
	assert.Contains(t, view, "a")
	// 高度 4 时只显示两行
	assert.NotContains(t, view, "c.txt")

	m = press(m, runes("j"))
	m = press(m, runes("j"))
	assert.Contains(t, m.View(), "c.txt")

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestEmptyView(t *testing.T) {
	coord := fstree.NewCoordinator()
	defer coord.Close()
	p := projector.New(coord)
	m := New(p, coord, "none")
	assert.Nil(t, m.Focused())
	assert.True(t, strings.Contains(m.View(), "(empty)"))
	m = press(m, runes("j"))
	assert.Nil(t, m.Focused())
}
