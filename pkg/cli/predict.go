package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/mchmarny/pwdetect/pkg/trainer"
	"github.com/urfave/cli/v3"
)

func newPredictCmd() *cli.Command {
	return &cli.Command{
		Name:    "predict",
		Aliases: []string{"p"},
		Usage:   "Classify a password with a trained model",
		Flags: []cli.Flag{
			newTextFlag(true),
			newModelFlag(),
			newThresholdFlag(),
		},
		Action: cmdPredict,
	}
}

func cmdPredict(ctx context.Context, cmd *cli.Command) error {
	s, err := loadScorer(ctx, cmd)
	if err != nil {
		return err
	}

	p := s.Score(cmd.String(textFlagName))
	return output(ctx, cmd, p, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Human created: %t %v (probability: %.4f)\n", p.Human, s.Threshold(), p.Probability)
		return err
	})
}

// loadScorer loads the model named by the flags or the config.
func loadScorer(ctx context.Context, cmd *cli.Command) (*trainer.Scorer, error) {
	cfg := getConfig(ctx)

	modelPath := cfg.Config.ModelFile
	if cmd.IsSet(modelFlagName) {
		modelPath = cmd.String(modelFlagName)
	}
	threshold := cfg.Config.Threshold
	if cmd.IsSet(thresholdFlagName) {
		threshold = cmd.Float(thresholdFlagName)
	}

	s, err := trainer.LoadScorer(modelPath, threshold)
	if err != nil {
		return nil, fmt.Errorf("loading model: %w", err)
	}
	return s, nil
}
