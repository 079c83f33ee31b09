package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/mchmarny/pwdetect/pkg/features"
	"github.com/urfave/cli/v3"
)

func newFeaturesCmd() *cli.Command {
	return &cli.Command{
		Name:    "features",
		Aliases: []string{"f"},
		Usage:   "Print the feature vector of a password",
		Flags:   []cli.Flag{newTextFlag(true)},
		Action:  cmdFeatures,
	}
}

func cmdFeatures(ctx context.Context, cmd *cli.Command) error {
	v := features.Extract(cmd.String(textFlagName))
	return output(ctx, cmd, v.Map(), func(w io.Writer) error {
		cells := v.Strings()
		for i, f := range features.All {
			if _, err := fmt.Fprintf(w, "%-36s %s\n", f.Name, cells[i]); err != nil {
				return err
			}
		}
		return nil
	})
}
