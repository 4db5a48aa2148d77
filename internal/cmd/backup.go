package cmd

import (
	"fmt"

	"file-utils-server/internal/models"

	"github.com/spf13/cobra"
)

// NewBackupCommand creates the 'file-utils backup' command
func NewBackupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup <source> <target-directory>",
		Short: "Copy a file into a directory under a free name",
		Long: `Copy source into target-directory. The copy keeps the source's name, or
--name when given, unless that name is taken, in which case the first free
"name n.ext" variant is used. An existing file is never overwritten.`,
		Args: cobra.ExactArgs(2),
		RunE: runBackup,
	}
	cmd.Flags().String("name", "", "name for the copy (defaults to the source's name)")
	return cmd
}

func runBackup(cmd *cobra.Command, args []string) error {
	req := models.BackupFileRequest{Source: args[0], TargetDirectory: args[1]}
	req.TargetName, _ = cmd.Flags().GetString("name")

	a, err := setupApp(cmd)
	if err != nil {
		return err
	}
	resp, errDetail := a.service.BackupFile(cmd.Context(), req)
	if errDetail != nil {
		return detailError(errDetail)
	}

	if wantJSON(cmd) {
		return printJSON(cmd.OutOrStdout(), resp)
	}
	fmt.Fprintln(cmd.OutOrStdout(), resp.BackupPath)
	return nil
}
