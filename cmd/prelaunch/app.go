package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conn-castle/prelaunch/internal/config"
	"github.com/conn-castle/prelaunch/internal/download"
	"github.com/conn-castle/prelaunch/internal/install"
	"github.com/conn-castle/prelaunch/internal/launch"
	"github.com/conn-castle/prelaunch/internal/locale"
	"github.com/conn-castle/prelaunch/internal/locator"
	"github.com/conn-castle/prelaunch/internal/logging"
	"github.com/conn-castle/prelaunch/internal/messages"
	"github.com/conn-castle/prelaunch/internal/orchestrator"
	"github.com/conn-castle/prelaunch/internal/prefs"
	"github.com/conn-castle/prelaunch/internal/resources"
	"github.com/conn-castle/prelaunch/internal/terminal"
)

// envLogLevel overrides logging.level.
const envLogLevel = "PRELAUNCH_LOG_LEVEL"

// launcherEnv lists variables that configure this process and are not
// passed on to the launched unit.
var launcherEnv = []string{config.EnvConfigPath, resources.EnvRoot, envLogLevel, terminal.EnvNoTUI}

var (
	getenv        = os.Getenv
	isInteractive = terminal.IsInteractive
)

var resourceSys resources.System = resources.RealSystem{}

var newLauncher = func(opts launch.Options, logger *zap.Logger) orchestrator.LaunchCoordinator {
	return launch.New(opts, logger)
}

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath    string
	resourcesRoot string
	lang          string
	debug         bool
}

func (o *globalOptions) register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&o.configPath, "config", "", messages.FlagConfigUsage)
	flags.StringVar(&o.resourcesRoot, "resources", "", messages.FlagResourcesUsage)
	flags.StringVar(&o.lang, "lang", "", messages.FlagLangUsage)
	flags.BoolVar(&o.debug, "debug", false, messages.FlagDebugUsage)
}

// app is the per-invocation wiring built from config and flags.
type app struct {
	cfg    *config.Config
	paths  config.Paths
	logger *zap.Logger
	res    *resources.Resolver
	lang   string
	tr     *locale.Catalog
}

// loadApp resolves config, paths, logging, resources and strings. Console
// logging is off while the TUI owns the terminal.
func loadApp(o *globalOptions, consoleLog bool) (*app, error) {
	path := o.configPath
	if path == "" {
		p, err := config.DefaultConfigPath(getenv)
		if err != nil {
			return nil, err
		}
		path = p
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	if lvl := strings.TrimSpace(getenv(envLogLevel)); lvl != "" {
		if _, err := logging.ParseLevel(lvl); err != nil {
			return nil, err
		}
		cfg.Logging.Level = lvl
	}
	if o.debug {
		cfg.Logging.Level = "debug"
		cfg.Logging.Debug = true
	}

	paths, err := config.ResolvePaths(cfg)
	if err != nil {
		return nil, err
	}
	logOpts := logging.Options{Console: consoleLog}
	if cfg.Logging.Debug {
		logOpts.FilePath = paths.LogPath
	}
	logger, err := logging.New(cfg.Logging, logOpts)
	if err != nil {
		return nil, err
	}

	res, err := resources.Resolve(resourceSys, o.resourcesRoot)
	if err != nil {
		return nil, err
	}
	logger.Debug(messages.CLIResourcesLog, zap.String("root", res.Root), zap.String("mode", string(res.Mode)))

	lang := o.lang
	if lang == "" {
		lang = cfg.Language
	}
	if lang == "" {
		lang = locale.Detect(getenv)
	}
	tr, err := locale.Load(res, lang)
	if err != nil {
		logger.Warn(messages.CLILocaleLog, zap.String("lang", lang), zap.Error(err))
	}

	return &app{cfg: cfg, paths: paths, logger: logger, res: res, lang: tr.Language(), tr: tr}, nil
}

func (a *app) locator() *locator.Locator {
	return locator.New(a.cfg.Runtime, a.paths.InstallDir, a.logger, locator.WithGetenv(getenv))
}

func (a *app) downloader() *download.Downloader {
	return download.New(download.OptionsFromConfig(a.cfg.Download), a.logger)
}

func (a *app) installer() *install.Installer {
	desc := locator.DescriptorFromConfig(a.cfg.Runtime)
	return install.New(install.Layout{BinaryDir: desc.BinaryDir, Executable: desc.ExecutableName()}, a.logger)
}

func (a *app) launcher() orchestrator.LaunchCoordinator {
	return newLauncher(launch.Options{Args: a.cfg.Launch.Args, StripEnv: launcherEnv}, a.logger)
}

func (a *app) prefs() *prefs.Store {
	return prefs.NewStore(a.paths.PreferencesPath)
}

func (a *app) close() {
	_ = a.logger.Sync()
}
