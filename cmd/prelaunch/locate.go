package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conn-castle/prelaunch/internal/messages"
)

func newLocateCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   messages.LocateUse,
		Short: messages.LocateShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			a, err := loadApp(global, true)
			if err != nil {
				return err
			}
			defer a.close()

			found, err := a.locator().Locate(cmd.Context())
			if err != nil {
				return err
			}
			for _, path := range found {
				_, _ = fmt.Fprintln(out, path)
			}
			if len(found) > 0 {
				return nil
			}

			_, _ = fmt.Fprintln(out, color.YellowString(messages.LocateNoneFound))
			inst := a.installer()
			if exe, ok := inst.FindExecutable(a.paths.InstallDir); ok && exe != inst.ExecutablePath(a.paths.InstallDir) {
				_, _ = fmt.Fprintf(out, messages.LocateMisplacedFmt, exe, inst.ExecutablePath(a.paths.InstallDir))
			}
			return &SilentExitError{Code: 1}
		},
	}
}
