package client

import (
	"github.com/spf13/cobra"
)

// NewRoot constructs a root Cobra command for the blocklog client.
// It registers the log command group.
func NewRoot(baseURL BaseURLFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "blocklog",
		Short: "Blocklog client commands",
	}
	root.AddCommand(NewLogCommand(baseURL))
	return root
}
