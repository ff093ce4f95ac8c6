package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	uni20 "github.com/uni20/uni20-go"
	"github.com/uni20/uni20-go/internal/output"
)

// NewGreetCmd creates the greet command.
func NewGreetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "greet [bindings-dir]",
		Short: "Smoke-test the bindings by calling greet()",
		Long: `Launch the probe against the bindings directory and call the bindings'
greet() entry point. A healthy binding answers "` + uni20.Greeting + `".`,
		Args: cobra.MaximumNArgs(1),
		RunE: runGreet,
	}
}

func runGreet(cmd *cobra.Command, args []string) error {
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

	greeting, err := probe.Greet(ctx)
	if err != nil {
		return err
	}

	output.Println(greeting)
	if greeting != uni20.Greeting {
		return fmt.Errorf("unexpected greeting %q, want %q", greeting, uni20.Greeting)
	}
	return nil
}
