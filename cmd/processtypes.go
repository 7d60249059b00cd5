package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/smazurov/dsrnode/internal/api/models"
	"github.com/smazurov/dsrnode/internal/processtypes"
	"github.com/spf13/cobra"
)

// CreateProcessTypesCmd creates the process-types command.
func CreateProcessTypesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "process-types",
		Short: "Print the process type table",
		Long: `Prints every process type code and description without starting the server. ` +
			`With --json the output matches the body of GET /api/DsrTry/getProcessTypes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries := processtypes.NewProvider().List()
			if asJSON {
				return writeProcessTypesJSON(cmd.OutOrStdout(), entries)
			}
			return writeProcessTypesTable(cmd.OutOrStdout(), entries)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func writeProcessTypesTable(w io.Writer, entries []processtypes.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\n", e.Code, e.Description)
	}
	return tw.Flush()
}

func writeProcessTypesJSON(w io.Writer, entries []processtypes.Entry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(models.FromEntries(entries))
}
