package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/mchmarny/pwdetect/pkg/trainer"
	"github.com/urfave/cli/v3"
)

const (
	datasetFlagName       = "dataset"
	textFlagName          = "text"
	thresholdFlagName     = "threshold"
	modelFlagName         = "model"
	plotFlagName          = "plot"
	wordlistFlagName      = "wordlist"
	randomSamplesFlagName = "random-samples"
	randomSeedFlagName    = "random-seed"
	noRecordFlagName      = "no-record"
	importanceFlagName    = "importance-type"
)

func newTextFlag(required bool) *cli.StringFlag {
	return &cli.StringFlag{
		Name:     textFlagName,
		Usage:    "Password text to classify",
		Required: required,
	}
}

func newThresholdFlag() *cli.FloatFlag {
	return &cli.FloatFlag{
		Name:  thresholdFlagName,
		Usage: "Probability above which a password is human-created (default: from config, 0.9)",
	}
}

func newModelFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  modelFlagName,
		Usage: "Path to the model file (default: from config)",
	}
}

func newBulkFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  wordlistFlagName,
			Usage: "Path or URL of a newline-delimited wordlist to score",
		},
		&cli.IntFlag{
			Name:  randomSamplesFlagName,
			Usage: "Number of random lowercase strings to score",
		},
		&cli.Uint64Flag{
			Name:  randomSeedFlagName,
			Usage: "Seed for the random strings (default: random)",
		},
	}
}

func newTrainCmd() *cli.Command {
	flags := []cli.Flag{
		&cli.StringSliceFlag{
			Name:     datasetFlagName,
			Usage:    "Path to a labeled dataset CSV (can be specified multiple times)",
			Required: true,
		},
		newTextFlag(true),
		newThresholdFlag(),
		newModelFlag(),
		&cli.StringFlag{
			Name:  plotFlagName,
			Usage: "Path to the feature importance plot, empty string to skip (default: from config)",
		},
		&cli.StringFlag{
			Name:  importanceFlagName,
			Usage: "Feature importance type [split, gain] (default: from config, split)",
		},
		&cli.BoolFlag{
			Name:  noRecordFlagName,
			Usage: "Do not record the run in the database",
		},
	}

	return &cli.Command{
		Name:    "train",
		Aliases: []string{"t"},
		Usage:   "Train and evaluate the classifier, then score a password",
		UsageText: `pwdetect train --dataset human.csv --dataset machine.csv --text 'sunshine1'
   pwdetect train --dataset all.csv --text 'x' --random-samples 1000
   pwdetect train --dataset all.csv --text 'x' --wordlist https://example.com/words.txt`,
		Flags:  append(flags, newBulkFlags()...),
		Action: cmdTrain,
	}
}

func cmdTrain(ctx context.Context, cmd *cli.Command) error {
	cfg := getConfig(ctx)

	opt := trainer.NewOptions(cfg.Config)
	opt.Datasets = cmd.StringSlice(datasetFlagName)
	opt.Text = cmd.String(textFlagName)
	opt.Wordlist = cmd.String(wordlistFlagName)
	opt.RandomSamples = cmd.Int(randomSamplesFlagName)
	opt.RandomSeed = cmd.Uint64(randomSeedFlagName)

	if cmd.IsSet(thresholdFlagName) {
		opt.Threshold = cmd.Float(thresholdFlagName)
	}
	if cmd.IsSet(modelFlagName) {
		opt.ModelPath = cmd.String(modelFlagName)
	}
	if cmd.IsSet(importanceFlagName) {
		opt.ImportanceType = cmd.String(importanceFlagName)
	}
	if cmd.IsSet(plotFlagName) {
		opt.PlotPath = cmd.String(plotFlagName)
	}

	if !cmd.Bool(noRecordFlagName) {
		db, err := cfg.getDB()
		if err != nil {
			return err
		}
		opt.DB = db
	}

	res, err := trainer.Run(ctx, opt)
	if err != nil {
		return fmt.Errorf("training: %w", err)
	}

	return output(ctx, cmd, res, func(w io.Writer) error {
		return printTrainResult(w, res)
	})
}

func printTrainResult(w io.Writer, res *trainer.Result) error {
	if res.OptimalThreshold != nil {
		fmt.Fprintf(w, "Optimal Threshold: %v\n", *res.OptimalThreshold)
	} else {
		fmt.Fprintln(w, "Optimal Threshold: undefined (single class in test rows)")
	}
	fmt.Fprintf(w, "Accuracy: %.2f%%\n", res.Accuracy*100)
	fmt.Fprintln(w, res.Report.String())

	if res.Prediction != nil {
		fmt.Fprintf(w, "Human created: %t %v (probability: %.4f)\n",
			res.Prediction.Human, res.Threshold, res.Prediction.Probability)
	}
	if res.Wordlist != nil || res.Random != nil {
		fmt.Fprintf(w, "Human: %d\n", res.Human())
		fmt.Fprintf(w, "Machine: %d\n", res.Machine())
	}

	fmt.Fprintln(w)
	fmt.Fprint(w, trainer.FormatImportance(res.Importance))

	if res.PlotPath != "" {
		fmt.Fprintf(w, "\nPlot: %s\n", res.PlotPath)
	}
	fmt.Fprintf(w, "Model: %s\n", res.ModelPath)
	return nil
}
