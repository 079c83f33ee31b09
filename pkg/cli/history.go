package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"text/tabwriter"
	"time"

	"github.com/mchmarny/pwdetect/pkg/store"
	"github.com/urfave/cli/v3"
)

const (
	limitFlagName = "limit"

	defaultHistoryLimit = 10
)

// runView is store.Run with the undefined threshold as null.
type runView struct {
	ID               int64     `json:"id" yaml:"id"`
	Key              string    `json:"key" yaml:"key"`
	CreatedAt        time.Time `json:"created_at" yaml:"created_at"`
	Dataset          string    `json:"dataset" yaml:"dataset"`
	TrainRows        int       `json:"train_rows" yaml:"train_rows"`
	TestRows         int       `json:"test_rows" yaml:"test_rows"`
	Accuracy         float64   `json:"accuracy" yaml:"accuracy"`
	OptimalThreshold *float64  `json:"optimal_threshold" yaml:"optimal_threshold"`
	Threshold        float64   `json:"threshold" yaml:"threshold"`
	ModelPath        string    `json:"model_path" yaml:"model_path"`
}

type historyResult struct {
	Runs  []*runView       `json:"runs" yaml:"runs"`
	State map[string]int64 `json:"state" yaml:"state"`
}

func newHistoryCmd() *cli.Command {
	return &cli.Command{
		Name:    "history",
		Aliases: []string{"h"},
		Usage:   "List recorded training runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  limitFlagName,
				Usage: fmt.Sprintf("Maximum number of runs to list (default: %d)", defaultHistoryLimit),
				Value: defaultHistoryLimit,
			},
		},
		Action: cmdHistory,
	}
}

func cmdHistory(ctx context.Context, cmd *cli.Command) error {
	db, err := getConfig(ctx).getDB()
	if err != nil {
		return err
	}

	runs, err := store.ListRuns(db, cmd.Int(limitFlagName))
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}

	state, err := store.GetDataState(db)
	if err != nil {
		return fmt.Errorf("getting data state: %w", err)
	}

	res := &historyResult{Runs: make([]*runView, 0, len(runs)), State: state}
	for _, r := range runs {
		res.Runs = append(res.Runs, toRunView(r))
	}

	return output(ctx, cmd, res, func(w io.Writer) error {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tCREATED\tDATASET\tTRAIN\tTEST\tACCURACY\tOPTIMAL\tTHRESHOLD\tMODEL")
		for _, r := range res.Runs {
			opt := "-"
			if r.OptimalThreshold != nil {
				opt = fmt.Sprintf("%.4f", *r.OptimalThreshold)
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%.2f%%\t%s\t%v\t%s\n", r.ID,
				r.CreatedAt.Local().Format(time.DateTime), r.Dataset, r.TrainRows, r.TestRows,
				r.Accuracy*100, opt, r.Threshold, r.ModelPath)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "\nRuns: %d, predictions: %d (human: %d, machine: %d)\n",
			state["run"], state["prediction"], state["human"], state["machine"])
		return err
	})
}

func toRunView(r *store.Run) *runView {
	v := &runView{
		ID:        r.ID,
		Key:       r.Key,
		CreatedAt: r.CreatedAt,
		Dataset:   r.Dataset,
		TrainRows: r.TrainRows,
		TestRows:  r.TestRows,
		Accuracy:  r.Accuracy,
		Threshold: r.Threshold,
		ModelPath: r.ModelPath,
	}
	if !math.IsNaN(r.OptimalThreshold) {
		t := r.OptimalThreshold
		v.OptimalThreshold = &t
	}
	return v
}
