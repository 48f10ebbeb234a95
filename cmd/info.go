package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"neurita/arbor/internal/neuron"
)

var infoJSON bool

var infoCmd = &cobra.Command{
	Use:   "info <skeleton-id>...",
	Short: "Show structure reports for stored neurons",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()

		skids, err := parseSkids(args)
		if err != nil {
			return err
		}

		var reports []*neuron.Report
		for _, skid := range skids {
			n, err := d.GetNeuron(skid)
			if err != nil {
				return err
			}
			if n == nil {
				return fmt.Errorf("neuron %d not in store", skid)
			}
			reports = append(reports, neuron.Summarize(n))
		}

		if infoJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(reports)
		}

		for _, r := range reports {
			printReport(r)
		}
		return nil
	},
}

func printReport(r *neuron.Report) {
	fmt.Printf("\n  #%d %s\n", r.SkeletonID, r.Name)
	fmt.Printf("  nodes=%d connectors=%d (pre=%d post=%d)\n",
		r.Nodes, r.Connectors, r.Presynapses, r.Postsynapses)
	fmt.Printf("  roots=%v components=%d branch points=%d end points=%d\n",
		r.Roots, r.Components, r.BranchPoints, r.EndPoints)
	fmt.Printf("  segments=%d longest=%d cable length=%.1f\n",
		r.Segments, r.LongestSegment, r.CableLength)
	if len(r.Soma) > 0 {
		fmt.Printf("  soma=%v\n", r.Soma)
	}
}

func init() {
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(infoCmd)
}
