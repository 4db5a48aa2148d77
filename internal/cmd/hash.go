package cmd

import (
	"fmt"
	"strings"

	"file-utils-server/internal/hashing"
	"file-utils-server/internal/models"

	"github.com/spf13/cobra"
)

// NewHashCommand creates the 'file-utils hash' command
func NewHashCommand() *cobra.Command {
	supported := make([]string, 0, len(hashing.Supported()))
	for _, a := range hashing.Supported() {
		supported = append(supported, string(a))
	}

	cmd := &cobra.Command{
		Use:   "hash <path>... | hash --data <text>",
		Short: "Print file digests",
		Long: `Print the digest of each file. With --data the given text is digested
instead; --base64 marks it as base64-encoded bytes.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("data") {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.MinimumNArgs(1)(cmd, args)
		},
		RunE: runHash,
	}
	cmd.Flags().StringP("algorithm", "a", "", "digest algorithm: "+strings.Join(supported, ", "))
	cmd.Flags().String("data", "", "digest this content instead of files")
	cmd.Flags().Bool("base64", false, "--data is base64-encoded")
	return cmd
}

func runHash(cmd *cobra.Command, args []string) error {
	algorithm, _ := cmd.Flags().GetString("algorithm")

	a, err := setupApp(cmd)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("data") {
		req := models.HashDataRequest{Algorithm: algorithm, Encoding: models.EncodingUTF8}
		req.Data, _ = cmd.Flags().GetString("data")
		if b64, _ := cmd.Flags().GetBool("base64"); b64 {
			req.Encoding = models.EncodingBase64
		}
		resp, errDetail := a.service.HashData(cmd.Context(), req)
		if errDetail != nil {
			return detailError(errDetail)
		}
		if wantJSON(cmd) {
			return printJSON(cmd.OutOrStdout(), resp)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  -\n", resp.Digest)
		return nil
	}

	results := make([]*models.HashFileResponse, 0, len(args))
	for _, path := range args {
		resp, errDetail := a.service.HashFile(cmd.Context(), models.HashFileRequest{Path: path, Algorithm: algorithm})
		if errDetail != nil {
			return fmt.Errorf("%s: %w", path, detailError(errDetail))
		}
		results = append(results, resp)
	}

	if wantJSON(cmd) {
		return printJSON(cmd.OutOrStdout(), results)
	}
	for _, r := range results {
		// Same layout as sha256sum and friends.
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", r.Digest, r.Path)
	}
	return nil
}
