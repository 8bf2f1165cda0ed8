package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conn-castle/prelaunch/internal/messages"
)

func newForgetCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   messages.ForgetUse,
		Short: messages.ForgetShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(global, true)
			if err != nil {
				return err
			}
			defer a.close()

			store := a.prefs()
			if err := store.Forget(); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), messages.ForgetDoneFmt, store.Path)
			return nil
		},
	}
}
