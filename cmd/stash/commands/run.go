package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/stash/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [operations...]",
		Short: "Run configured analysis operations, served from cache when possible",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Help()
				return nil
			}
			force, _ := cmd.Flags().GetBool("force")
			differential, _ := cmd.Flags().GetBool("differential")
			return c.app.Run(cmd.Context(), args, app.RunOptions{
				Force:        force,
				Differential: differential,
			})
		},
	}
	cmd.Flags().BoolP("force", "f", false, "Recompute, bypassing the cache")
	cmd.Flags().BoolP("differential", "d", false, "Serve stale results after a project change, tagged with both fingerprints")
	return cmd
}
