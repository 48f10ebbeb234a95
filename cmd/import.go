package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"neurita/arbor/internal/neuron"
	"neurita/arbor/internal/swc"
)

var (
	importRecursive bool
	importNoLabels  bool
	importName      string
	importID        int64
	importPreLabel  int
	importPostLabel int
	importSomaLabel int
)

var importCmd = &cobra.Command{
	Use:   "import <file-or-dir>...",
	Short: "Import SWC files into the local store",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := OpenOrCreateDatabase()
		if err != nil {
			return err
		}
		defer d.Close()

		opts := swc.ReadOptions{
			Name:         importName,
			ID:           importID,
			ImportLabels: !importNoLabels,
			PreLabel:     importPreLabel,
			PostLabel:    importPostLabel,
			SomaLabel:    importSomaLabel,
			Recursive:    importRecursive,
		}

		for _, path := range args {
			info, err := os.Stat(path)
			if err != nil {
				return err
			}

			var neurons []*neuron.Neuron
			if info.IsDir() {
				neurons, err = swc.ReadDir(path, opts)
			} else {
				var n *neuron.Neuron
				n, err = swc.ReadFile(path, opts)
				neurons = []*neuron.Neuron{n}
			}
			if err != nil {
				return err
			}

			for _, n := range neurons {
				if err := d.SaveNeuron(n); err != nil {
					return fmt.Errorf("saving neuron %d: %w", n.SkeletonID, err)
				}
				fmt.Printf("imported %d %q (%d nodes, %d connectors)\n",
					n.SkeletonID, n.Name, len(n.Nodes), len(n.Connectors))
			}
		}
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVarP(&importRecursive, "recursive", "r", false, "Also search subdirectories for .swc files")
	importCmd.Flags().BoolVar(&importNoLabels, "no-labels", false, "Do not import the label column as tags")
	importCmd.Flags().StringVar(&importName, "name", "", "Neuron name (default: filename stem)")
	importCmd.Flags().Int64Var(&importID, "id", 0, "Skeleton ID (default: numeric filename, else random)")
	importCmd.Flags().IntVar(&importPreLabel, "pre-label", 0, "Extract nodes with this label as presynapses")
	importCmd.Flags().IntVar(&importPostLabel, "post-label", 0, "Extract nodes with this label as postsynapses")
	importCmd.Flags().IntVar(&importSomaLabel, "soma-label", neuron.LabelSoma, "Tag nodes with this label as soma (0 disables)")
	rootCmd.AddCommand(importCmd)
}
