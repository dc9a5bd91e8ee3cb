package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func newCapabilitiesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capabilities",
		Short: "Show or change this project's feature gates",
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

			caps, err := st.Capabilities(cmd.Context())
			if err != nil {
				return err
			}
			names := make([]string, 0, len(caps))
			for name := range caps {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				state := "disabled"
				if caps[name] {
					state = "enabled"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-15s %s\n", name, state)
			}
			return nil
		},
	}

	cmd.AddCommand(newCapabilitySetCmd(app, "enable", true))
	cmd.AddCommand(newCapabilitySetCmd(app, "disable", false))
	return cmd
}

func newCapabilitySetCmd(app *App, verb string, value bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <capability>",
		Short: verb + " a feature gate",
		Args:  cobra.ExactArgs(1),
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

			name := strings.ToLower(strings.TrimSpace(args[0]))
			caps, err := st.Capabilities(cmd.Context())
			if err != nil {
				return err
			}
			caps[name] = value
			if err := st.SetCapabilities(cmd.Context(), caps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %sd\n", name, verb)
			return nil
		},
	}
}
