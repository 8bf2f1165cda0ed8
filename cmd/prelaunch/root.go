package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conn-castle/prelaunch/internal/download"
	"github.com/conn-castle/prelaunch/internal/locale"
	"github.com/conn-castle/prelaunch/internal/messages"
	"github.com/conn-castle/prelaunch/internal/orchestrator"
	"github.com/conn-castle/prelaunch/internal/ui"
)

// exitCancelled is the exit code of a run the user cancelled.
const exitCancelled = 130

var runTUI = ui.RunTUI

type runOptions struct {
	plain         bool
	forceDownload bool
	runtime       string
	remember      bool
	acceptRules   bool
}

func newRootCmd() *cobra.Command {
	var global globalOptions
	var opts runOptions
	cmd := &cobra.Command{
		Use:           messages.RootUse,
		Short:         messages.RootShort,
		Long:          messages.RootLong,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLaunch(cmd, &global, opts)
		},
	}
	global.register(cmd)
	flags := cmd.Flags()
	flags.BoolVar(&opts.plain, "plain", false, messages.FlagPlainUsage)
	flags.BoolVar(&opts.forceDownload, "force-download", false, messages.FlagForceDownloadUsage)
	flags.StringVar(&opts.runtime, "runtime", "", messages.FlagRuntimeUsage)
	flags.BoolVar(&opts.remember, "remember", false, messages.FlagRememberUsage)
	flags.BoolVar(&opts.acceptRules, "accept-rules", false, messages.FlagAcceptRulesUsage)

	cmd.AddCommand(newLocateCmd(&global), newFetchCmd(&global), newForgetCmd(&global))
	return cmd
}

func runLaunch(cmd *cobra.Command, global *globalOptions, opts runOptions) error {
	interactive := !opts.plain && isInteractive()
	a, err := loadApp(global, !interactive)
	if err != nil {
		return err
	}
	defer a.close()

	plan := orchestrator.Plan{
		Mirrors:       download.MirrorsFromConfig(a.cfg.Mirrors),
		ArchivePath:   a.paths.ArchivePath,
		InstallDir:    a.paths.InstallDir,
		UnitSource:    a.res.Path(a.cfg.Launch.Unit),
		StagingDir:    a.paths.StagingDir,
		ForceDownload: opts.forceDownload,
	}
	plan.RulesRequired, plan.RulesText = a.rules()

	deps := orchestrator.Deps{
		Locator:    a.locator(),
		Downloader: a.downloader(),
		Installer:  a.installer(),
		Launcher:   a.launcher(),
		Prefs:      a.prefs(),
		Catalog:    a.tr,
		Logger:     a.logger,
	}
	run := func(ctx context.Context, p orchestrator.Presenter) orchestrator.Outcome {
		deps.Presenter = p
		return orchestrator.New(deps, plan).Run(ctx)
	}

	var out orchestrator.Outcome
	if interactive {
		out, err = runTUI(cmd.Context(), ui.TUIOptions{Title: a.cfg.AppTitle, Catalog: a.tr}, run)
		if err != nil {
			return err
		}
	} else {
		presenter := ui.NewPlain(cmd.OutOrStdout(), a.tr, ui.PlainOptions{
			Runtime:     opts.runtime,
			Remember:    opts.remember,
			AcceptRules: opts.acceptRules,
		})
		out = run(cmd.Context(), presenter)
	}
	return outcomeError(out)
}

// rules reports whether the detected region requires the rules
// acknowledgement and returns the localized rules text.
func (a *app) rules() (bool, string) {
	if len(a.cfg.Rules.Regions) == 0 {
		return false, ""
	}
	region := locale.DetectRegion(getenv)
	required := slices.ContainsFunc(a.cfg.Rules.Regions, func(r string) bool {
		return strings.EqualFold(strings.TrimSpace(r), region)
	})
	if !required {
		return false, ""
	}
	for _, lang := range []string{a.lang, locale.Fallback} {
		rel := strings.ReplaceAll(a.cfg.Rules.Resource, "{lang}", lang)
		if !a.res.Exists(rel) {
			continue
		}
		data, err := a.res.ReadFile(rel)
		if err != nil {
			a.logger.Warn(messages.CLIRulesReadLog, zap.String("path", rel), zap.Error(err))
			continue
		}
		return true, string(data)
	}
	return true, a.tr.T(locale.RulesTitle)
}

func outcomeError(out orchestrator.Outcome) error {
	switch out.State {
	case orchestrator.StateDone:
		return nil
	case orchestrator.StateCancelled:
		return &SilentExitError{Code: exitCancelled}
	default:
		return fmt.Errorf(messages.CLIRunFailedFmt, out.Phase, out.Err)
	}
}
