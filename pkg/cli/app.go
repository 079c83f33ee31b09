package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mchmarny/pwdetect/pkg/config"
	"github.com/mchmarny/pwdetect/pkg/logging"
	"github.com/mchmarny/pwdetect/pkg/store"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	appName = "pwdetect"

	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"

	debugFlagName  = "debug"
	configFlagName = "config"
	dbFlagName     = "db"
	formatFlagName = "format"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""
)

type ctxKey struct{}

// Execute creates and runs the CLI application.
func Execute() {
	logging.SetDefaultCLILogger("info")

	app := newApp()
	if err := app.Run(context.Background(), os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

type appConfig struct {
	DBPath string
	Debug  bool
	Format string
	Config *config.Config

	db *sql.DB
}

// getDB opens the run store on first use.
func (c *appConfig) getDB() (*sql.DB, error) {
	if c.db != nil {
		return c.db, nil
	}
	if err := store.Init(c.DBPath); err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}
	db, err := store.GetDB(c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	c.db = db
	return db, nil
}

func (c *appConfig) close() {
	if c.db != nil {
		c.db.Close()
		c.db = nil
	}
}

func getConfig(ctx context.Context) *appConfig {
	if cfg, ok := ctx.Value(ctxKey{}).(*appConfig); ok {
		return cfg
	}
	return &appConfig{Format: formatText, Config: config.Default()}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:                  appName,
		Version:               fmt.Sprintf("%s (%s - %s)", version, commit, date),
		EnableShellCompletion: true,
		HideHelpCommand:       true,
		Usage:                 "Classify passwords as human-created or machine-generated",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  debugFlagName,
				Usage: "Prints verbose logs (optional, default: false)",
			},
			&cli.StringFlag{
				Name:  configFlagName,
				Usage: "Path to the YAML config file (default: ~/.pwdetect/config.yaml)",
			},
			&cli.StringFlag{
				Name:  dbFlagName,
				Usage: "Path to the Sqlite database file (default: ~/.pwdetect/data.db)",
			},
			&cli.StringFlag{
				Name:  formatFlagName,
				Usage: "Output format [text, json, yaml]",
				Value: formatText,
			},
		},
		Commands: []*cli.Command{
			newTrainCmd(),
			newExtractCmd(),
			newGenerateCmd(),
			newPredictCmd(),
			newScoreCmd(),
			newFeaturesCmd(),
			newHistoryCmd(),
			newResetCmd(),
		},
		Before: before,
		After: func(ctx context.Context, _ *cli.Command) error {
			getConfig(ctx).close()
			return nil
		},
	}
}

func before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	debug := cmd.Bool(debugFlagName)
	if debug {
		logging.SetDefaultCLILogger("debug")
	}

	format, err := parseFormat(cmd.String(formatFlagName))
	if err != nil {
		return ctx, err
	}

	var c *config.Config
	if p := cmd.String(configFlagName); p != "" {
		if c, err = config.Load(p); err != nil {
			return ctx, fmt.Errorf("loading config: %w", err)
		}
	} else {
		if c, err = config.ReadOrCreate(getHomeDir()); err != nil {
			return ctx, fmt.Errorf("reading config: %w", err)
		}
	}

	dbPath := cmd.String(dbFlagName)
	if dbPath == "" {
		dbPath = filepath.Join(getHomeDir(), store.DataFileName)
	}

	return context.WithValue(ctx, ctxKey{}, &appConfig{
		DBPath: dbPath,
		Debug:  debug,
		Format: format,
		Config: c,
	}), nil
}

func parseFormat(v string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", formatText:
		return formatText, nil
	case formatJSON:
		return formatJSON, nil
	case formatYAML, "yml":
		return formatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", v)
	}
}

func getHomeDir() string {
	dir, created, err := config.GetOrCreateHomeDir(appName)
	if err != nil {
		slog.Debug("error getting home dir, using current dir instead", "error", err)
		return "."
	}
	if created {
		slog.Debug("created dir", "path", dir)
	}
	return dir
}

// output writes v in the selected format; text mode calls text instead.
func output(ctx context.Context, cmd *cli.Command, v any, text func(w io.Writer) error) error {
	w := cmd.Root().Writer
	if w == nil {
		w = os.Stdout
	}
	switch getConfig(ctx).Format {
	case formatJSON:
		e := json.NewEncoder(w)
		e.SetIndent("", "  ")
		return e.Encode(v)
	case formatYAML:
		return yaml.NewEncoder(w).Encode(v)
	default:
		return text(w)
	}
}
