package cmd

import (
	"github.com/spf13/cobra"

	"github.com/uni20/uni20-go/internal/output"
	"github.com/uni20/uni20-go/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show harness version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			output.Println(version.Get().String())
			return nil
		},
	}
}
