// cmd/tools/voicectl/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "voicectl",
		Short:         "Operator tooling for the voice command workers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newDispatchCmd(), newClassifyCmd(), newRoutesCmd(), newRegistryCmd(), newScaffoldCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
