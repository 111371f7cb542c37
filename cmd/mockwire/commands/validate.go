package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yshengliao/mockwire/config"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a handler definition file",
		Long:  "Load and compile a handler definition file, reporting any structural or semantic errors.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := config.Load(args[0])
			if err != nil {
				return err
			}
			handlers, err := config.Compile(f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d handlers OK\n", args[0], len(handlers))
			for _, h := range handlers {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", h)
			}
			return nil
		},
	}
}
