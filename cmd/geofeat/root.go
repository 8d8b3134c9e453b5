package main

import (
	"context"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/viant/geofeat/config"
	"github.com/viant/geofeat/dataset"
)

// Version is the CLI version.
const Version = "0.1.0"

// app carries the per-invocation configuration shared by subcommands.
type app struct {
	v   *viper.Viper
	cfg *config.Config
}

func execute(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	err := root.Execute()
	if err != nil {
		printError(root.ErrOrStderr(), err)
	}
	return exitCode(err)
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	root := &cobra.Command{
		Use:           "geofeat",
		Short:         "vector feature datasets on SQLite",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	flags := root.PersistentFlags()
	flags.String("config", "", "path to a geofeat YAML configuration file")
	flags.String("database", "", "SQLite database file (overrides config)")
	flags.String("mapper", "", "feature mapper: envelope or geojson (overrides config)")
	flags.Bool("lenient", false, "skip undecodable records instead of failing")
	flags.Bool("change-log", false, "record changes of created datasets in the change log")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.Bool("no-color", false, "disable colored output")

	root.AddCommand(
		a.datasetsCmd(),
		a.countCmd(),
		a.readCmd(),
		a.importCmd(),
		a.boundsCmd(),
		a.changesCmd(),
		a.rebuildCmd(),
		a.dropCmd(),
		a.sqlCmd(),
	)
	return root
}

// init loads env files, binds flags to viper and resolves the configuration.
func (a *app) init(cmd *cobra.Command) error {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	a.v.SetEnvPrefix("geofeat")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if a.v.GetBool("no-color") {
		color.NoColor = true
	}

	cfg := config.Default()
	if path := a.v.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if db := a.v.GetString("database"); db != "" {
		cfg.Database = db
	}
	if m := a.v.GetString("mapper"); m != "" {
		cfg.Mapper = m
	}
	if a.v.GetBool("lenient") {
		cfg.Lenient = true
	}
	if a.v.GetBool("change-log") {
		cfg.ChangeLog = true
	}
	if level := a.v.GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// workspace opens the configured database; the caller must close it.
func (a *app) workspace() (*dataset.Workspace, error) {
	return dataset.Open(a.cfg.Database, a.cfg.WorkspaceOptions()...)
}

// open returns an existing dataset with its configured overrides.
func (a *app) open(ctx context.Context, ws *dataset.Workspace, name string) (*dataset.Dataset, error) {
	opts, err := a.cfg.DatasetOptions(name)
	if err != nil {
		return nil, err
	}
	return ws.Get(ctx, name, opts...)
}

func (a *app) create(ctx context.Context, ws *dataset.Workspace, name string) (*dataset.Dataset, error) {
	opts, err := a.cfg.DatasetOptions(name)
	if err != nil {
		return nil, err
	}
	return ws.Create(ctx, name, opts...)
}
