package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/beamdec/internal/decode"
	"github.com/samcharles93/beamdec/internal/logger"
)

func decodeCmd() *cli.Command {
	var (
		count       int64
		attnVisPath string
	)

	flags := append(searchFlags(), demoModelFlags()...)
	flags = append(flags, loggingFlags()...)
	flags = append(flags,
		&cli.Int64Flag{
			Name:        "count",
			Aliases:     []string{"n"},
			Usage:       "number of decodes to run",
			Value:       1,
			Destination: &count,
		},
		&cli.StringFlag{
			Name:        "attn-vis",
			Usage:       "write an attention visualization JSON for the first decode",
			Destination: &attnVisPath,
		},
	)

	return &cli.Command{
		Name:  "decode",
		Usage: "Run beam search over the built-in demo model",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applySearchConfig(cmd, LoadConfig())
			ctx = setupLogger(ctx)
			log := logger.FromContext(ctx)

			cfg, renderer, err := demoSearchConfig()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			model := demoModel(cfg)

			session, err := decode.NewSession(cfg, model, renderer, log)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			for i := int64(0); i < count; i++ {
				out, err := session.Decode(ctx)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: decode %d: %v", i, err), 1)
				}
				fmt.Printf("[%s] score=%.4f steps=%d\n", out.ID, out.Score, out.Steps)
				for _, sentence := range decode.SplitSentences(out.Words) {
					fmt.Println("  " + sentence)
				}
				if attnVisPath != "" && i == 0 {
					if err := writeAttnVisFile(attnVisPath, model.AttnLen, renderer.TokenString, out); err != nil {
						return cli.Exit(fmt.Sprintf("error: %v", err), 1)
					}
					log.Info("wrote attention visualization", "path", attnVisPath)
				}
			}

			mean, n := session.MeanScore()
			log.Info("decode complete", "decodes", n, "mean_score", mean)
			return nil
		},
	}
}

// writeAttnVisFile renders the demo article from the attention positions and
// writes the visualization document for one outcome.
func writeAttnVisFile(path string, attnLen int, tokenString func(int) string, out *decode.Outcome) error {
	article := make([]string, attnLen)
	for i := range article {
		article[i] = tokenString(demoThreshold + i)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if err := decode.WriteAttnVis(f, article, out.Text, out); err != nil {
		return err
	}
	return f.Close()
}
