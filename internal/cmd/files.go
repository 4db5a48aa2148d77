package cmd

import (
	"fmt"

	"file-utils-server/internal/models"

	"github.com/spf13/cobra"
)

// NewCopyCommand creates the 'file-utils copy' command
func NewCopyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "copy <source> <target>",
		Short: "Copy a file unless the target exists",
		Long: `Copy source to target. When target already exists nothing is written and
the command reports that the copy was skipped.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setupApp(cmd)
			if err != nil {
				return err
			}
			resp, errDetail := a.service.CopyFile(cmd.Context(), models.CopyFileRequest{Source: args[0], Target: args[1]})
			if errDetail != nil {
				return detailError(errDetail)
			}
			if wantJSON(cmd) {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			if !resp.Copied {
				fmt.Fprintf(cmd.OutOrStdout(), "skipped: %s exists\n", resp.Target)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Target)
			return nil
		},
	}
}

// NewRenameCommand creates the 'file-utils rename' command
func NewRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <source> <target>",
		Short: "Move a file unless the target exists",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setupApp(cmd)
			if err != nil {
				return err
			}
			resp, errDetail := a.service.RenameFile(cmd.Context(), models.RenameFileRequest{Source: args[0], Target: args[1]})
			if errDetail != nil {
				return detailError(errDetail)
			}
			if wantJSON(cmd) {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			if !resp.Renamed {
				fmt.Fprintf(cmd.OutOrStdout(), "skipped: %s exists\n", resp.Target)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Target)
			return nil
		},
	}
}

// NewRemoveCommand creates the 'file-utils remove' command
func NewRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <path>...",
		Aliases: []string{"rm"},
		Short:   "Delete files; missing files are not an error",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setupApp(cmd)
			if err != nil {
				return err
			}
			results := make([]*models.RemoveFileResponse, 0, len(args))
			for _, path := range args {
				resp, errDetail := a.service.RemoveFile(cmd.Context(), models.RemoveFileRequest{Path: path})
				if errDetail != nil {
					return fmt.Errorf("%s: %w", path, detailError(errDetail))
				}
				results = append(results, resp)
			}
			if wantJSON(cmd) {
				return printJSON(cmd.OutOrStdout(), results)
			}
			for _, r := range results {
				if r.Removed {
					fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", r.Path)
				}
			}
			return nil
		},
	}
}

// NewExistsCommand creates the 'file-utils exists' command. It exits non-zero when the
// check fails so it can drive shell conditionals.
func NewExistsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exists <path>...",
		Short: "Check that paths exist",
		Long: `Check paths in order. By default every path must exist and the first
missing one is reported. With --any a single present path is enough.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runExists,
	}
	cmd.Flags().Bool("any", false, "succeed when at least one path exists")
	return cmd
}

func runExists(cmd *cobra.Command, args []string) error {
	req := models.ExistsRequest{Paths: args, Mode: models.ExistsModeAll}
	if anyMode, _ := cmd.Flags().GetBool("any"); anyMode {
		req.Mode = models.ExistsModeAny
	}

	a, err := setupApp(cmd)
	if err != nil {
		return err
	}
	resp, errDetail := a.service.Exists(cmd.Context(), req)
	if errDetail != nil {
		return detailError(errDetail)
	}

	if wantJSON(cmd) {
		if err := printJSON(cmd.OutOrStdout(), resp); err != nil {
			return err
		}
	} else if resp.Path != "" {
		fmt.Fprintln(cmd.OutOrStdout(), resp.Path)
	}
	switch {
	case resp.Exists:
		return nil
	case resp.Mode == models.ExistsModeAny:
		return fmt.Errorf("none of the paths exist")
	default:
		return fmt.Errorf("%s does not exist", resp.Path)
	}
}
