package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the project database and default feature gates",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := openLog(app)
			if err != nil {
				return err
			}
			defer log.Close()
			st, err := openStore(app, log)
			if err != nil {
				return err
			}
			defer st.Close()

			path, err := resolveDBPath(app)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initialized project at %s\n", path)
			return nil
		},
	}
}
