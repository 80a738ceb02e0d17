package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sjzsdu/explorer/lang"
	"github.com/sjzsdu/explorer/tui"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse [path]",
	Short: lang.T("Browse a directory interactively"),
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		s, err := newSession(ctx, args, resolveWatchMode())
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.tree.Expand(ctx, 1); err != nil {
			return err
		}
		return tui.Run(ctx, s.projector, s.coord, s.root)
	},
}

func init() {
	browseCmd.Flags().StringVarP(&watchMode, "watch", "w", "", lang.T("Watch mode: notify, poll or none"))
	rootCmd.AddCommand(browseCmd)
}
