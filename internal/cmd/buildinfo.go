package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uni20/uni20-go/internal/output"
)

var (
	buildinfoOutputFlag   string
	buildinfoSnapshotFlag string
)

// NewBuildinfoCmd creates the buildinfo command.
func NewBuildinfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "buildinfo [bindings-dir]",
		Short: "Print build metadata reported by the uni20 bindings",
		Long: `Launch the probe against the bindings directory, call the bindings'
buildinfo() entry point, and print the returned metadata.

The snapshot is fetched fresh on every invocation; nothing is cached.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runBuildinfo,
	}

	cmd.Flags().StringVarP(&buildinfoOutputFlag, "output", "o", "text", "Output format: text, json")
	cmd.Flags().StringVar(&buildinfoSnapshotFlag, "snapshot", "", "Also write the raw snapshot to this file as JSON")

	return cmd
}

func runBuildinfo(cmd *cobra.Command, args []string) error {
	explicitDir := ""
	if len(args) > 0 {
		explicitDir = args[0]
	}

	probe, err := openProbe(explicitDir)
	if err != nil {
		return err
	}
	defer probe.Close()

	ctx, cancel := callContext()
	defer cancel()

	info, err := probe.BuildInfo(ctx)
	if err != nil {
		return err
	}

	if buildinfoSnapshotFlag != "" {
		if err := info.WriteSnapshotFile(buildinfoSnapshotFlag); err != nil {
			return err
		}
		output.Info("snapshot written", "path", buildinfoSnapshotFlag)
	}

	switch buildinfoOutputFlag {
	case "json":
		data, err := json.MarshalIndent(info.Raw(), "", "  ")
		if err != nil {
			return fmt.Errorf("error marshaling buildinfo: %v", err)
		}
		output.Println(string(data))
	case "text":
		output.Print(output.RenderBuildInfo(info))
	default:
		return fmt.Errorf("unknown output format: %s", buildinfoOutputFlag)
	}

	return nil
}
