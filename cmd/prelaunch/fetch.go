package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conn-castle/prelaunch/internal/download"
	"github.com/conn-castle/prelaunch/internal/fsutil"
	"github.com/conn-castle/prelaunch/internal/messages"
)

func newFetchCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   messages.FetchUse,
		Short: messages.FetchShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			a, err := loadApp(global, true)
			if err != nil {
				return err
			}
			defer a.close()

			mirrors := download.MirrorsFromConfig(a.cfg.Mirrors)
			session, err := a.downloader().Download(cmd.Context(), mirrors, a.paths.ArchivePath, fetchProgress(out))
			if err != nil {
				return err
			}
			if session.Reused {
				_, _ = fmt.Fprintf(out, messages.FetchReusedFmt, session.Target)
			}

			res, err := a.installer().Install(cmd.Context(), a.paths.ArchivePath, a.paths.InstallDir)
			if err != nil {
				return err
			}
			if err := fsutil.RemoveBestEffort(a.paths.ArchivePath); err != nil {
				a.logger.Warn(messages.OrchestratorCleanupLog, zap.String("path", a.paths.ArchivePath), zap.Error(err))
			}
			_, _ = color.New(color.FgGreen).Fprintf(out, messages.FetchInstalledFmt, res.Executable)
			return nil
		},
	}
}

// fetchProgress prints one line per attempt and per 25% of progress.
func fetchProgress(out io.Writer) download.ProgressFunc {
	last := -1
	return func(u download.Update) {
		s := u.Session
		switch u.Kind {
		case download.UpdateAttempt:
			last = -1
			_, _ = fmt.Fprintf(out, messages.FetchAttemptFmt, s.Attempts, s.MirrorIndex+1)
		case download.UpdateProgress:
			if step := s.Percent() / 25; step != last && s.TotalBytes > 0 {
				last = step
				_, _ = fmt.Fprintf(out, messages.FetchProgressFmt, s.Percent(), s.BytesDownloaded, s.TotalBytes)
			}
		case download.UpdateAttemptFailed:
			_, _ = fmt.Fprintln(out, color.YellowString(messages.FetchAttemptFailedFmt, u.Err))
		}
	}
}
