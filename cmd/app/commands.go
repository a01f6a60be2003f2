package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"

	"github.com/starford/daivaya/internal"
	"github.com/starford/daivaya/internal/export"
	"github.com/starford/daivaya/internal/horoscope"
	"github.com/starford/daivaya/internal/mcpserver"
	"github.com/starford/daivaya/internal/prompt"
)

// build wires the components with logs on stderr, keeping stdout for output.
func build(ctx context.Context, cmd *cli.Command) (*internal.Components, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.App.LogLevel}))
	slog.SetDefault(logger)
	return internal.Build(ctx, cfg, logger)
}

func chartCommand() *cli.Command {
	return &cli.Command{
		Name:  "chart",
		Usage: "Compute one birth chart and print it as JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "date", Usage: "Birth date, YYYY-MM-DD", Required: true},
			&cli.StringFlag{Name: "time", Usage: "Local birth time, HH:MM[:SS]", Required: true},
			&cli.StringFlag{Name: "place", Usage: "Birth place", Required: true},
			&cli.StringFlag{Name: "xlsx", Usage: "Also write the dasha timetable workbook to this path"},
			&cli.BoolFlag{Name: "render", Usage: "Print the reading prompt as rendered markdown instead of JSON"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			c, err := build(ctx, cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			in := horoscope.BirthInput{
				Date:  cmd.String("date"),
				Time:  cmd.String("time"),
				Place: cmd.String("place"),
			}
			return runChart(ctx, os.Stdout, c, in, cmd.String("xlsx"), cmd.Bool("render"))
		},
	}
}

func runChart(ctx context.Context, w io.Writer, c *internal.Components, in horoscope.BirthInput, xlsx string, render bool) error {
	svc := c.Service
	res, loc, err := svc.Compute(ctx, in)
	if err != nil {
		return err
	}

	if xlsx != "" {
		if err := export.SaveAs(xlsx, res, svc.Now()); err != nil {
			return err
		}
		slog.Info("workbook written", slog.String("path", xlsx))
	}

	if render {
		summary := res.Summary()
		md, err := c.Prompts.Render(prompt.Reading, prompt.ReadingData{D1: res.D1, D9: res.D9, Details: &summary})
		if err != nil {
			return err
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err != nil {
			return fmt.Errorf("create renderer: %w", err)
		}
		out, err := r.Render(md)
		if err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		_, err = io.WriteString(w, out)
		return err
	}

	view, err := horoscope.NewChartView(res, loc)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the chart tools over MCP on stdin/stdout",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			c, err := build(ctx, cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			return mcpserver.New(c.Service, version).ServeStdio()
		},
	}
}
