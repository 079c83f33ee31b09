package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/mchmarny/pwdetect/pkg/dataset"
	"github.com/urfave/cli/v3"
)

const humanCreatedFlagName = "human-created"

type extractResult struct {
	Input        string `json:"input" yaml:"input"`
	Output       string `json:"output" yaml:"output"`
	Rows         int    `json:"rows" yaml:"rows"`
	HumanCreated bool   `json:"human_created" yaml:"human_created"`
}

func newExtractCmd() *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Aliases:   []string{"x"},
		Usage:     "Extract password features into a labeled dataset CSV",
		ArgsUsage: "<input_file> <output_file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  humanCreatedFlagName,
				Usage: "Label the passwords as human-created",
			},
		},
		Action: cmdExtract,
	}
}

func cmdExtract(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 2 {
		return fmt.Errorf("expected <input_file> <output_file>, got %d arguments", cmd.Args().Len())
	}
	in, out := cmd.Args().Get(0), cmd.Args().Get(1)
	human := cmd.Bool(humanCreatedFlagName)

	n, err := dataset.BuildFile(ctx, in, out, human)
	if err != nil {
		return fmt.Errorf("building dataset: %w", err)
	}
	slog.Debug("dataset written", "path", out, "rows", n)

	res := &extractResult{Input: in, Output: out, Rows: n, HumanCreated: human}
	return output(ctx, cmd, res, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Wrote %d rows to %s\n", res.Rows, res.Output)
		return err
	})
}
