package cli

import (
	"github.com/spf13/cobra"
)

func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "airlift",
		Short: "Package container images for air-gapped delivery",
		Long: `airlift packages a set of container images into a single integrity-verified
bundle that can be carried to a network-isolated host and loaded into the
local container runtime there, without access to a registry.`,
	}
	cmd.AddCommand(
		Bundle(),
		Checksum(),
	)
	return cmd
}
