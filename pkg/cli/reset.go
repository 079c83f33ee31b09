package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mchmarny/pwdetect/pkg/store"
	"github.com/urfave/cli/v3"
)

const yesFlagName = "yes"

func newResetCmd() *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "Delete all recorded runs and start fresh",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  yesFlagName,
				Usage: "Skip the confirmation prompt",
			},
		},
		Action: cmdReset,
	}
}

func cmdReset(ctx context.Context, cmd *cli.Command) error {
	cfg := getConfig(ctx)
	w := cmd.Root().Writer

	if !cmd.Bool(yesFlagName) {
		fmt.Fprintf(w, "This will permanently delete all data in %s\n", cfg.DBPath)
		fmt.Fprint(w, "Are you sure? [y/N]: ")

		reader := bufio.NewReader(cmd.Root().Reader)
		answer, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Fprintln(w, "Aborted.")
			return nil
		}
	}

	// close the DB before deleting the file
	cfg.close()

	if err := os.Remove(cfg.DBPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting database: %w", err)
	}

	slog.Info("database deleted", "path", cfg.DBPath)

	if err := store.Init(cfg.DBPath); err != nil {
		return fmt.Errorf("re-initializing database: %w", err)
	}

	slog.Info("database re-initialized", "path", cfg.DBPath)
	fmt.Fprintln(w, "Reset complete.")
	return nil
}
