package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/joelanford/airlift/action"
	"github.com/joelanford/airlift/internal/console"
	"github.com/joelanford/airlift/internal/retry"
	"github.com/joelanford/airlift/internal/runtime"
)

func Bundle() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Create, inspect, and load air-gap image bundles",
	}
	cmd.AddCommand(
		BundleCreate(),
		BundleLoad(),
		BundleInspect(),
	)
	return cmd
}

func BundleCreate() *cobra.Command {
	var (
		compression string
		pinsFile    string
	)
	attempts, baseDelay, maxDelay := retryFlags(retry.DefaultConfig())

	cmd := &cobra.Command{
		Use:   "create <output-dir> <image>...",
		Short: "Pull images and compose a transportable bundle",
		Args:  cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			cmd.SilenceUsage = true
			ctx := cmd.Context()

			rt, err := runtime.NewDocker(quietLogger())
			if err != nil {
				handleError(err)
			}

			console.Secondaryf("📦 Creating bundle in %q (%d images, %s compression)", args[0], len(args)-1, compression)
			a := action.CreateBundle{
				OutputDir:   args[0],
				Images:      args[1:],
				Compression: compression,
				Retry: retry.Config{
					Attempts:  *attempts,
					BaseDelay: *baseDelay,
					MaxDelay:  *maxDelay,
				},
				Runtime:  rt,
				PinsFile: pinsFile,
				Log:      quietLogger(),
			}
			m, err := a.Run(ctx)
			if err != nil {
				handleError(fmt.Errorf("create bundle: %w", err))
			}
			console.Primaryf("✅ Bundle created: %s (archive %s)", args[0], m.Archive)
		},
	}
	cmd.Flags().StringVar(&compression, "compression", envString("AIRLIFT_COMPRESSION", "gzip"), "archive compression algorithm (none, gzip, zstd)")
	cmd.Flags().StringVar(&pinsFile, "pins-file", envString("AIRLIFT_PINS_FILE", ""), "optional version-pin snapshot to copy into the bundle")
	cmd.Flags().IntVar(attempts, "retry-attempts", *attempts, "maximum pull attempts per image")
	cmd.Flags().DurationVar(baseDelay, "retry-base-delay", *baseDelay, "initial backoff delay between pull attempts")
	cmd.Flags().DurationVar(maxDelay, "retry-max-delay", *maxDelay, "backoff delay cap")
	return cmd
}

func BundleLoad() *cobra.Command {
	verify := envBool("AIRLIFT_VERIFY_AFTER_LOAD", false)

	cmd := &cobra.Command{
		Use:   "load <bundle-dir-or-archive>",
		Short: "Verify and load a bundle into the local container runtime",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cmd.SilenceUsage = true
			ctx := cmd.Context()

			rt, err := runtime.NewDocker(quietLogger())
			if err != nil {
				handleError(err)
			}

			console.Secondaryf("🚚 Loading bundle %q", args[0])
			a := action.LoadBundle{
				Path:            args[0],
				Runtime:         rt,
				VerifyAfterLoad: verify,
				Log:             quietLogger(),
			}
			res, err := a.Run(ctx)
			if err != nil {
				handleError(fmt.Errorf("load bundle: %w", err))
			}
			if !res.Verified {
				console.Warnf("⚠️ No checksum record was present; the archive was loaded without integrity verification")
			}
			console.Primaryf("✅ Loaded archive %s", res.Archive)
			for _, img := range res.RuntimeImages {
				console.Secondaryf("   - %s", img)
			}
		},
	}
	cmd.Flags().BoolVar(&verify, "verify", verify, "list runtime images after loading as a sanity check")
	return cmd
}

func BundleInspect() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <bundle-dir>",
		Short: "Print a bundle's manifest and checksum status without loading it",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cmd.SilenceUsage = true
			a := action.InspectBundle{
				Dir:    args[0],
				Output: cmd.OutOrStdout(),
			}
			if err := a.Run(cmd.Context()); err != nil {
				handleError(fmt.Errorf("inspect bundle: %w", err))
			}
		},
	}
}

// quietLogger routes library logging to stderr at a level that keeps the
// console output readable.
func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		FullTimestamp:    false,
	})
	return log
}
