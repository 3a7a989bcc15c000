package daemon

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/ubuntu/appliance-insights/internal/common/constants"
)

func (a *App) installVersion() {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Returns the running version of " + constants.WebServiceCmdName + " and exits",
		Args:  cobra.NoArgs,
		RunE:  func(cmd *cobra.Command, args []string) error { return printVersion(cmd.OutOrStdout()) },
	}
	a.cmd.AddCommand(cmd)
}

// printVersion writes the current service version to w.
func printVersion(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s\t%s\n", constants.WebServiceCmdName, constants.Version)
	return err
}
