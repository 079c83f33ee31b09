package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/mchmarny/pwdetect/pkg/generator"
	"github.com/mchmarny/pwdetect/pkg/trainer"
	"github.com/urfave/cli/v3"
)

type scoreResult struct {
	Threshold float64        `json:"threshold" yaml:"threshold"`
	Wordlist  *trainer.Tally `json:"wordlist,omitempty" yaml:"wordlist,omitempty"`
	Random    *trainer.Tally `json:"random,omitempty" yaml:"random,omitempty"`
	Human     int            `json:"human" yaml:"human"`
	Machine   int            `json:"machine" yaml:"machine"`
}

func (r *scoreResult) add(t *trainer.Tally) {
	r.Human += t.Human
	r.Machine += t.Machine
}

func newScoreCmd() *cli.Command {
	return &cli.Command{
		Name:    "score",
		Aliases: []string{"s"},
		Usage:   "Tally human and machine verdicts over a wordlist or random strings",
		UsageText: `pwdetect score --wordlist english.txt
   pwdetect score --random-samples 1000 --random-seed 7`,
		Flags:  append([]cli.Flag{newModelFlag(), newThresholdFlag()}, newBulkFlags()...),
		Action: cmdScore,
	}
}

func cmdScore(ctx context.Context, cmd *cli.Command) error {
	src := cmd.String(wordlistFlagName)
	n := cmd.Int(randomSamplesFlagName)
	if src == "" && n <= 0 {
		return errors.New("either --wordlist or --random-samples required")
	}

	s, err := loadScorer(ctx, cmd)
	if err != nil {
		return err
	}

	res := &scoreResult{Threshold: s.Threshold()}

	if src != "" {
		r, err := trainer.OpenWordlist(ctx, src)
		if err != nil {
			return fmt.Errorf("opening wordlist: %w", err)
		}
		defer r.Close()

		if res.Wordlist, err = s.ScoreWordlist(ctx, r); err != nil {
			return fmt.Errorf("scoring wordlist: %w", err)
		}
		res.add(res.Wordlist)
	}

	if n > 0 {
		seed := cmd.Uint64(randomSeedFlagName)
		if !cmd.IsSet(randomSeedFlagName) {
			seed = rand.Uint64()
		}
		if res.Random, err = s.ScoreRandom(ctx, n, generator.NewSeeded(seed)); err != nil {
			return fmt.Errorf("scoring random strings: %w", err)
		}
		res.add(res.Random)
	}

	return output(ctx, cmd, res, func(w io.Writer) error {
		if getConfig(ctx).Debug {
			for _, t := range []*trainer.Tally{res.Wordlist, res.Random} {
				if t == nil {
					continue
				}
				for _, p := range t.Predictions {
					fmt.Fprintf(w, "%s %t %.4f\n", p.Text, p.Human, p.Probability)
				}
			}
		}
		fmt.Fprintf(w, "Human: %d\n", res.Human)
		_, err := fmt.Fprintf(w, "Machine: %d\n", res.Machine)
		return err
	})
}
