// cmd/tools/voicectl/dispatch.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"voice-command-workers/internal/dispatch"
	"voice-command-workers/internal/models"
)

type dispatchOutput struct {
	Result  dispatch.Result `json:"result"`
	HostURL string          `json:"hostUrl"`
}

func newDispatchCmd() *cobra.Command {
	var (
		file          string
		enforceRoutes bool
	)
	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Dispatch an intent read from JSON",
		Long:  "Reads an intent ({action, target, payload, feedback}) from --file or stdin and prints the dispatch result.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			data, err := io.ReadAll(r)
			if err != nil {
				return fmt.Errorf("read intent: %w", err)
			}
			intent, err := dispatch.DecodeIntent(data)
			if err != nil {
				return err
			}

			d := dispatch.NewDispatcher()
			if enforceRoutes {
				d = dispatch.NewDispatcher(dispatch.WithAllowedRoutes(models.RoutePaths(models.NavigationRoutes)))
			}
			res := d.Dispatch(intent)
			return printJSON(cmd.OutOrStdout(), dispatchOutput{Result: res, HostURL: res.HostURL()})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "intent JSON file (default stdin)")
	cmd.Flags().BoolVar(&enforceRoutes, "enforce-routes", false, "reject navigation outside the route table")
	return cmd
}

func newRoutesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the voice-navigable routes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PATH\tROLE\tLABEL")
			for _, r := range models.NavigationRoutes {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Path, r.Role, r.Label)
			}
			return tw.Flush()
		},
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
