package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"neurita/arbor/internal/swc"
)

var (
	exportOut       string
	exportSynapses  bool
	exportMinRadius float64
	exportAll       bool
)

var exportCmd = &cobra.Command{
	Use:   "export [skeleton-id]...",
	Short: "Export stored neurons as SWC files",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && !exportAll {
			return fmt.Errorf("pass skeleton IDs or --all")
		}

		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()

		skids, err := parseSkids(args)
		if err != nil {
			return err
		}
		if exportAll {
			summaries, err := d.ListNeurons()
			if err != nil {
				return err
			}
			for _, s := range summaries {
				skids = append(skids, s.SkeletonID)
			}
		}

		opts := swc.WriteOptions{
			ExportSynapses: exportSynapses,
			MinRadius:      exportMinRadius,
		}

		var errs []error
		for _, skid := range skids {
			n, err := d.GetNeuron(skid)
			if err != nil {
				return err
			}
			if n == nil {
				errs = append(errs, fmt.Errorf("neuron %d not in store", skid))
				continue
			}
			path, _, err := swc.WriteFile(exportOut, n, opts)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			fmt.Printf("wrote %s (%d nodes)\n", path, len(n.Nodes))
		}
		return errors.Join(errs...)
	},
}

func parseSkids(args []string) ([]int64, error) {
	skids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid skeleton ID %q", a)
		}
		skids = append(skids, id)
	}
	return skids, nil
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (single neuron) or directory")
	exportCmd.Flags().BoolVar(&exportSynapses, "synapses", false, "Label pre-/postsynapse nodes 7/8")
	exportCmd.Flags().Float64Var(&exportMinRadius, "min-radius", 0, "Clamp radii below this value up to it")
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "Export every stored neuron")
	rootCmd.AddCommand(exportCmd)
}
