package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"neurita/arbor/internal/scene"
)

var (
	renderOut        string
	renderConversion float64
	renderRadii      bool
	renderNoSoma     bool
	renderNoNeurites bool
	renderNoCn       bool
	renderResolution int
)

var renderCmd = &cobra.Command{
	Use:   "render <skeleton-id>...",
	Short: "Render stored neurons to a Wavefront OBJ file",
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

		s := scene.New()
		if renderConversion != 0 {
			s.Conversion = renderConversion
		}
		opts := scene.AddOptions{
			Neurites:         !renderNoNeurites,
			Soma:             !renderNoSoma,
			Connectors:       !renderNoCn,
			UseRadii:         renderRadii,
			SphereResolution: renderResolution,
		}

		for _, skid := range skids {
			n, err := d.GetNeuron(skid)
			if err != nil {
				return err
			}
			if n == nil {
				return fmt.Errorf("neuron %d not in store", skid)
			}
			if err := s.Add(n, opts); err != nil {
				return fmt.Errorf("building scene for %d: %w", skid, err)
			}
		}

		f, err := os.Create(renderOut)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := s.WriteOBJ(f); err != nil {
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d objects)\n", renderOut, len(s.Objects()))
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "neurons.obj", "Output OBJ file")
	renderCmd.Flags().Float64Var(&renderConversion, "conversion", 0, "Coordinate scale factor (default 1/10000)")
	renderCmd.Flags().BoolVar(&renderRadii, "radii", false, "Use per-node radii for neurites")
	renderCmd.Flags().BoolVar(&renderNoSoma, "no-soma", false, "Skip soma spheres")
	renderCmd.Flags().BoolVar(&renderNoNeurites, "no-neurites", false, "Skip neurite polylines")
	renderCmd.Flags().BoolVar(&renderNoCn, "no-connectors", false, "Skip connector links")
	renderCmd.Flags().IntVar(&renderResolution, "resolution", 8, "Polar resolution of soma spheres")
	rootCmd.AddCommand(renderCmd)
}
