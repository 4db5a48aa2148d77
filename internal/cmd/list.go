package cmd

import (
	"fmt"
	"io"
	"path"

	"file-utils-server/internal/models"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewListCommand creates the 'file-utils list' command
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [directory]",
		Short: "List a directory flat, recursively or as a tree",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runList,
	}
	cmd.Flags().BoolP("recursive", "r", false, "include every descendant")
	cmd.Flags().BoolP("tree", "t", false, "print nested entries as a tree")
	cmd.Flags().BoolP("human", "H", false, "show human-readable sizes")
	cmd.MarkFlagsMutuallyExclusive("recursive", "tree")
	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	req := models.ListDirectoryRequest{Mode: models.ListModeFlat}
	if len(args) == 1 {
		req.Directory = args[0]
	}
	if recursive, _ := cmd.Flags().GetBool("recursive"); recursive {
		req.Mode = models.ListModeRecursive
	}
	if tree, _ := cmd.Flags().GetBool("tree"); tree {
		req.Mode = models.ListModeTree
	}
	req.HumanSizes, _ = cmd.Flags().GetBool("human")

	a, err := setupApp(cmd)
	if err != nil {
		return err
	}
	resp, errDetail := a.service.ListDirectory(cmd.Context(), req)
	if errDetail != nil {
		return detailError(errDetail)
	}

	out := cmd.OutOrStdout()
	if wantJSON(cmd) {
		return printJSON(out, resp)
	}
	if resp.Mode == models.ListModeTree {
		color.New(color.FgCyan, color.Bold).Fprintln(out, resp.Directory)
		printTree(out, resp.Entries, "")
	} else {
		for _, e := range resp.Entries {
			printEntry(out, e, e.Path)
		}
	}
	fmt.Fprintf(out, "\n%d entries\n", resp.TotalCount)
	return nil
}

func entrySize(e models.EntryInfo) string {
	if e.SizeHuman != "" {
		return e.SizeHuman
	}
	if e.Size != nil {
		return fmt.Sprintf("%d", *e.Size)
	}
	return ""
}

func printEntry(out io.Writer, e models.EntryInfo, label string) {
	if e.Type == models.EntryTypeFolder {
		color.New(color.FgBlue, color.Bold).Fprintln(out, label+"/")
		return
	}
	fmt.Fprintf(out, "%s  %s\n", label, color.New(color.Faint).Sprint(entrySize(e)))
}

// printTree draws entries with box-drawing connectors, children indented under their folder.
func printTree(out io.Writer, entries []models.EntryInfo, prefix string) {
	for i, e := range entries {
		connector, childPrefix := "├── ", "│   "
		if i == len(entries)-1 {
			connector, childPrefix = "└── ", "    "
		}
		fmt.Fprint(out, prefix+connector)
		printEntry(out, e, path.Base(e.Path))
		if len(e.Children) > 0 {
			printTree(out, e.Children, prefix+childPrefix)
		}
	}
}
