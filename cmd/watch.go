package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sjzsdu/explorer/lang"
	"github.com/sjzsdu/explorer/logging"
	"github.com/sjzsdu/explorer/metrics"
	"github.com/sjzsdu/explorer/projector"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	watchMode   string
	watchDepth  int
	metricsAddr string
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: lang.T("Watch a directory and print the projection on every change"),
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchMode, "watch", "w", "", lang.T("Watch mode: notify, poll or none"))
	watchCmd.Flags().IntVarP(&watchDepth, "depth", "L", 1, lang.T("Expand depth (-1 for unlimited)"))
	watchCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", lang.T("Serve Prometheus metrics on this address"))
	rootCmd.AddCommand(watchCmd)
}

// resolveWatchMode 命令行参数优先于配置
func resolveWatchMode() string {
	if watchMode != "" {
		return watchMode
	}
	return settings.Watch
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := newSession(ctx, args, resolveWatchMode())
	if err != nil {
		return err
	}
	defer s.Close()

	if metricsAddr != "" {
		srv := &http.Server{Addr: metricsAddr, Handler: metrics.Handler(s.registry)}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.L().Error("metrics server", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	changed := make(chan struct{}, 1)
	var cancel func()
	if err := s.coord.Do(ctx, func() {
		cancel = s.projector.OnChange(func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}); err != nil {
		return err
	}
	defer cancel()

	if err := s.tree.Expand(ctx, watchDepth); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	show := func() {
		fmt.Fprintf(out, "-- %s --\n", time.Now().Format("15:04:05"))
		fmt.Fprint(out, projector.Render(s.projector.Sequence(), projector.RenderOptions{Title: s.title()}))
	}
	show()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changed:
			show()
		}
	}
}
