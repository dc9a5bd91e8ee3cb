package cli

import (
	"fmt"

	"fabledesk/internal/store"

	"github.com/spf13/cobra"
)

func newCleanupCmd(app *App) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove trash entries past their retention window",
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

			removed, err := st.CleanupOldTrash(cmd.Context(), days)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d trash entries older than %d days\n",
				removed, effectiveDays(days))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Retention window in days (0 uses the default)")
	return cmd
}

func effectiveDays(days int) int {
	if days <= 0 {
		return store.DefaultTrashRetentionDays
	}
	return days
}
