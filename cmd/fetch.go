package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"neurita/arbor/internal/catmaid"
)

var fetchName string

var fetchCmd = &cobra.Command{
	Use:   "fetch <skeleton-id>...",
	Short: "Fetch skeletons from a CATMAID server into the local store",
	Long: `Fetch downloads skeletons (nodes, connectors, tags) from the CATMAID
server configured via CATMAID_SERVER, CATMAID_API_TOKEN and
CATMAID_PROJECT_ID (or a .env file) and saves them locally. Skeletons are
addressed by ID, or by neuron name with --name.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && fetchName == "" {
			return fmt.Errorf("pass skeleton IDs or --name")
		}

		skids, err := parseSkids(args)
		if err != nil {
			return err
		}

		cfg, err := catmaid.LoadConfig()
		if err != nil {
			return err
		}
		client := catmaid.NewClient(cfg)

		d, err := OpenOrCreateDatabase()
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := context.Background()
		if fetchName != "" {
			found, err := client.SkeletonIDsByName(ctx, fetchName)
			if err != nil {
				return err
			}
			if len(found) == 0 {
				return fmt.Errorf("no neurons named %q", fetchName)
			}
			skids = append(skids, found...)
		}
		for _, skid := range skids {
			n, err := client.GetSkeleton(ctx, skid)
			if err != nil {
				return err
			}
			if err := d.SaveNeuron(n); err != nil {
				return fmt.Errorf("saving neuron %d: %w", skid, err)
			}
			fmt.Printf("fetched %d %q (%d nodes, %d connectors)\n",
				n.SkeletonID, n.Name, len(n.Nodes), len(n.Connectors))
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchName, "name", "", "Fetch neurons matching this name")
	rootCmd.AddCommand(fetchCmd)
}
