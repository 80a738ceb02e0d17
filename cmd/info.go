package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/sjzsdu/explorer/fstree"
	"github.com/sjzsdu/explorer/helper"
	"github.com/sjzsdu/explorer/helper/renders"
	"github.com/sjzsdu/explorer/lang"
	"github.com/sjzsdu/explorer/projector"
	"github.com/spf13/cobra"
)

var plainInfo bool

var infoCmd = &cobra.Command{
	Use:   "info <path>",
	Short: lang.T("Show details of a path"),
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().BoolVar(&plainInfo, "plain", false, lang.T("Print raw markdown"))
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	classifier := fstree.NewClassifier(
		fstree.WithWorkers(settings.Workers),
		fstree.WithExcluder(helper.NewExcluder(settings.Exclude...)),
	)
	md, err := infoMarkdown(cmd.Context(), classifier, path)
	if err != nil {
		return err
	}

	if plainInfo {
		_, err = fmt.Fprint(cmd.OutOrStdout(), md)
		return err
	}
	r, err := renders.NewMarkdownRenderer("")
	if err != nil {
		return err
	}
	return r.Fprint(cmd.OutOrStdout(), md)
}

// infoMarkdown 生成路径详情的 Markdown
func infoMarkdown(ctx context.Context, l fstree.Lister, path string) (string, error) {
	entry, err := l.Classify(path)
	if err != nil {
		return "", err
	}

	kind := lang.T("file")
	if entry.IsDir {
		kind = lang.T("directory")
	}
	if entry.Symlink {
		kind += " (" + lang.T("symlink") + ")"
	}
	rows := [][2]string{
		{lang.T("Path"), entry.Path},
		{lang.T("Type"), kind},
	}
	if entry.Info != nil {
		rows = append(rows,
			[2]string{lang.T("Size"), projector.FormatSize(entry.Info.Size())},
			[2]string{lang.T("Mode"), entry.Info.Mode().String()},
			[2]string{lang.T("Modified"), entry.Info.ModTime().Format("2006-01-02 15:04:05")},
		)
	}
	if entry.IsDir {
		entries, err := l.ReadDir(ctx, path)
		if err != nil {
			rows = append(rows, [2]string{lang.T("Entries"), err.Error()})
		} else {
			rows = append(rows, [2]string{lang.T("Entries"), strconv.Itoa(len(entries))})
		}
	}

	return fmt.Sprintf("## %s\n\n%s", entry.Name, renders.Table([2]string{lang.T("Property"), lang.T("Value")}, rows)), nil
}
