package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/joelanford/airlift/action"
	"github.com/joelanford/airlift/internal/checksum"
	"github.com/joelanford/airlift/internal/console"
)

func Checksum() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checksum",
		Short: "Work with checksum records",
	}
	cmd.AddCommand(ChecksumVerify())
	return cmd
}

// ChecksumVerify exits 0 on a match, 1 on a mismatch, and 2 when no record
// exists, so scripts can distinguish "corrupt" from "never recorded".
func ChecksumVerify() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file>",
		Short: "Verify a file against its adjacent checksum record",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cmd.SilenceUsage = true
			a := action.VerifyChecksum{Path: args[0]}
			ok, err := a.Run(cmd.Context())
			switch {
			case errors.Is(err, checksum.ErrMissingRecord):
				console.Fatalf(2, "💥 %v", err)
			case err != nil:
				console.Fatalf(1, "💥 %v", err)
			case !ok:
				console.Fatalf(1, "💥 %q does not match its checksum record", args[0])
			}
			console.Primaryf("✅ %q matches its checksum record", args[0])
		},
	}
}
