package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"neurita/arbor/internal/db"
)

var (
	lsJSON   bool
	lsSearch string
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored neurons",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()

		var summaries []db.Summary
		if lsSearch != "" {
			summaries, err = d.SearchByName(lsSearch)
		} else {
			summaries, err = d.ListNeurons()
		}
		if err != nil {
			return err
		}

		if lsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(summaries)
		}

		for _, s := range summaries {
			fmt.Printf("%12d  %-40s %6d nodes %6d connectors  %s\n",
				s.SkeletonID, s.Name, s.Nodes, s.Connectors,
				time.UnixMilli(s.ImportedAt).Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	lsCmd.Flags().BoolVar(&lsJSON, "json", false, "Output as JSON")
	lsCmd.Flags().StringVar(&lsSearch, "search", "", "Filter by name substring")
	rootCmd.AddCommand(lsCmd)
}
