package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDemoCmd(app *App) *cobra.Command {
	var resetUniverseID string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Seed a sample universe, novel, and planning board",
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

			ctx := cmd.Context()
			if resetUniverseID != "" {
				if err := st.ResetDemoDataScoped(ctx, resetUniverseID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "reseeded universe %s\n", resetUniverseID)
				return nil
			}
			if err := st.InjectDemoData(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "demo data created")
			return nil
		},
	}

	cmd.Flags().StringVar(&resetUniverseID, "reset", "", "Wipe and reseed an existing universe instead of creating a new one")
	return cmd
}
