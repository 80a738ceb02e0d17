package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sjzsdu/explorer/fstree"
	"github.com/sjzsdu/explorer/projector"
)

// Run 启动全屏浏览界面，直到用户退出或 ctx 取消
func Run(ctx context.Context, p *projector.Projector, coord *fstree.Coordinator, title string) error {
	prog := tea.NewProgram(New(p, coord, title), tea.WithAltScreen(), tea.WithContext(ctx))

	// 合并连续的变化通知，避免阻塞协调器
	signal := make(chan struct{}, 1)
	var cancel func()
	if err := coord.Do(ctx, func() {
		cancel = p.OnChange(func() {
			select {
			case signal <- struct{}{}:
			default:
			}
		})
	}); err != nil {
		return err
	}
	defer cancel()

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			case <-signal:
				prog.Send(ChangedMsg{})
			}
		}
	}()

	_, err := prog.Run()
	return err
}
