package cli

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/mchmarny/pwdetect/pkg/generator"
	"github.com/urfave/cli/v3"
)

const (
	numPasswordsFlagName = "num-passwords"
	seedFlagName         = "seed"

	defaultNumPasswords = 100
)

type generateResult struct {
	Output string `json:"output" yaml:"output"`
	Count  int    `json:"count" yaml:"count"`
}

func newGenerateCmd() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Aliases:   []string{"g"},
		Usage:     "Generate random machine-style passwords",
		ArgsUsage: "<output_file>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  numPasswordsFlagName,
				Usage: fmt.Sprintf("Number of passwords to generate (default: %d)", defaultNumPasswords),
				Value: defaultNumPasswords,
			},
			&cli.Uint64Flag{
				Name:  seedFlagName,
				Usage: "Random seed (default: random)",
			},
		},
		Action: cmdGenerate,
	}
}

func cmdGenerate(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected <output_file>, got %d arguments", cmd.Args().Len())
	}
	out := cmd.Args().Get(0)

	n := cmd.Int(numPasswordsFlagName)
	if n < 0 {
		return fmt.Errorf("invalid number of passwords: %d", n)
	}

	seed := cmd.Uint64(seedFlagName)
	if !cmd.IsSet(seedFlagName) {
		seed = rand.Uint64()
	}

	if err := generator.WriteFile(out, generator.NewSeeded(seed).Generate(n)); err != nil {
		return fmt.Errorf("writing passwords: %w", err)
	}

	res := &generateResult{Output: out, Count: n}
	return output(ctx, cmd, res, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Wrote %d passwords to %s\n", res.Count, res.Output)
		return err
	})
}
