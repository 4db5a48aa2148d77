package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"file-utils-server/internal/models"

	"github.com/spf13/cobra"
)

func wantJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// detailError turns a service ErrorDetail into a command error.
func detailError(d *models.ErrorDetail) error {
	if data, ok := d.Data.(map[string]interface{}); ok {
		if details, ok := data["details"].(string); ok && details != "" && details != d.Message {
			return fmt.Errorf("%s: %s", d.Message, details)
		}
	}
	return fmt.Errorf("%s", d.Message)
}
