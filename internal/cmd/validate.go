package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	uni20 "github.com/uni20/uni20-go"
	"github.com/uni20/uni20-go/internal/output"
)

var validateFromFileFlag string

// NewValidateCmd creates the validate command.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [bindings-dir]",
		Short: "Validate the BuildInfo contract",
		Long: `Fetch buildinfo() from the bindings (or load a snapshot written earlier
with "buildinfo --snapshot") and check the contract: all required string
fields non-empty, both option maps non-empty, and every option entry
carrying a value key whose value is non-empty unless help text accompanies it.

Each violated key is reported; any violation fails the command.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runValidate,
	}

	cmd.Flags().StringVar(&validateFromFileFlag, "from-file", "", "Validate a JSON snapshot instead of probing")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	var info *uni20.BuildInfo
	var err error

	if validateFromFileFlag != "" {
		info, err = uni20.LoadBuildInfoFile(validateFromFileFlag)
		if err != nil {
			return err
		}
	} else {
		explicitDir := ""
		if len(args) > 0 {
			explicitDir = args[0]
		}

		probe, perr := openProbe(explicitDir)
		if perr != nil {
			return perr
		}
		defer probe.Close()

		ctx, cancel := callContext()
		defer cancel()

		info, err = probe.BuildInfo(ctx)
		if err != nil {
			return err
		}
	}

	if err := info.Validate(); err != nil {
		var ve *uni20.ValidationError
		if errors.As(err, &ve) {
			for _, violation := range ve.Violations {
				output.Error("contract violation", "rule", violation)
			}
		}
		return err
	}

	output.Info("buildinfo contract satisfied",
		"build_type", info.BuildType,
		"compiler", info.CXXCompilerID+" "+info.CXXCompilerVersion,
		"options", len(info.BuildOptions),
		"detected", len(info.DetectedEnvironment),
	)
	return nil
}
