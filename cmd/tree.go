package cmd

import (
	"fmt"

	"github.com/sjzsdu/explorer/lang"
	"github.com/sjzsdu/explorer/projector"
	"github.com/spf13/cobra"
)

var (
	treeDepth int
	showStats bool
	showSize  bool
)

var treeCmd = &cobra.Command{
	Use:   "tree [path]",
	Short: lang.T("Print the directory tree"),
	Long: `tree 命令以树状结构显示指定目录的内容。

示例：
  explorer tree                    # 显示当前目录的树状结构
  explorer tree /path/to/dir       # 显示指定目录的树状结构
  explorer tree --depth 2          # 限制展开深度为2层
  explorer tree --stats            # 显示统计信息`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTree,
}

func init() {
	treeCmd.Flags().IntVarP(&treeDepth, "depth", "L", -1, lang.T("Expand depth (-1 for unlimited)"))
	treeCmd.Flags().BoolVarP(&showStats, "stats", "s", false, lang.T("Show statistics"))
	treeCmd.Flags().BoolVar(&showSize, "size", false, lang.T("Show file sizes"))
	rootCmd.AddCommand(treeCmd)
}

func runTree(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := newSession(ctx, args, "none")
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.tree.Expand(ctx, treeDepth); err != nil {
		return err
	}
	seq := s.projector.Sequence()
	fmt.Fprint(cmd.OutOrStdout(), projector.Render(seq, projector.RenderOptions{Title: s.title(), ShowSize: showSize}))

	if showStats {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", projector.Stats(seq).String())
	}
	return nil
}
