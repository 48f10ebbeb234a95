package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <skeleton-id>...",
	Short: "Remove neurons from the local store",
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
		for _, skid := range skids {
			if err := d.DeleteNeuron(skid); err != nil {
				return err
			}
			fmt.Printf("removed %d\n", skid)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
