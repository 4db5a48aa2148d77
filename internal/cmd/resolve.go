package cmd

import (
	"fmt"

	"file-utils-server/internal/models"

	"github.com/spf13/cobra"
)

// NewResolveCommand creates the 'file-utils resolve' command
func NewResolveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <file|base|folder> <name> [directory]",
		Short: "Print a name that does not collide with existing entries",
		Long: `Find the first free variant of a name inside a directory of the working
directory. "report.txt" becomes "report 2.txt", then "report 3.txt" and so on;
a trailing number is incremented instead ("draft9.md" becomes "draft10.md").

  file    the name carries its own extension
  base    the name is a base name; --ext supplies the extension
  folder  the name is used whole, as for directories`,
		Example: `  file-utils resolve file report.txt docs
  file-utils resolve base report --ext .pdf
  file-utils resolve folder "New Folder"`,
		Args:      cobra.RangeArgs(2, 3),
		ValidArgs: []string{models.VariantFile, models.VariantBase, models.VariantFolder},
		RunE:      runResolve,
	}
	cmd.Flags().String("ext", "", "extension for the base variant, dot included")
	cmd.Flags().Bool("sanitize", false, "replace characters that are invalid in file names first")
	return cmd
}

func runResolve(cmd *cobra.Command, args []string) error {
	req := models.ResolveNameRequest{Variant: args[0], Name: args[1]}
	if len(args) == 3 {
		req.Directory = args[2]
	}
	req.Extension, _ = cmd.Flags().GetString("ext")
	req.Sanitize, _ = cmd.Flags().GetBool("sanitize")

	a, err := setupApp(cmd)
	if err != nil {
		return err
	}
	resp, errDetail := a.service.ResolveName(cmd.Context(), req)
	if errDetail != nil {
		return detailError(errDetail)
	}

	if wantJSON(cmd) {
		return printJSON(cmd.OutOrStdout(), resp)
	}
	fmt.Fprintln(cmd.OutOrStdout(), resp.Path)
	return nil
}
