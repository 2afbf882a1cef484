// Command inibin decodes an inibin file and prints it as JSON.
//
//	inibin [--kind champion|ability|c|a] [--strings FILE] [--strict] FILE
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/twinfer/inibin-plugin/pkg/ibin"
	"github.com/twinfer/inibin-plugin/pkg/keymap"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "inibin:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "inibin",
		Usage:     "decode an inibin file to JSON",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "kind",
				Aliases: []string{"k"},
				Usage:   "bundled key map: " + strings.Join(keymap.Kinds(), ", ") + " (aliases c, a)",
			},
			&cli.StringFlag{
				Name:  "schema",
				Usage: "YAML key map file, overrides --kind",
			},
			&cli.StringFlag{
				Name:    "strings",
				Aliases: []string{"s"},
				Usage:   "YAML substitution table for decoded strings",
			},
			&cli.StringFlag{
				Name:  "encoding",
				Usage: "charset of string-table bytes, e.g. windows-1252",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "reject trailing padding after the last block",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "log decoder progress to stderr",
			},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("expected exactly one FILE argument", 2)
	}

	data, err := os.ReadFile(c.Args().First())
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if c.Bool("debug") {
		level = slog.LevelDebug
	}
	opts := []ibin.Option{
		ibin.WithLogger(slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level}))),
		ibin.WithKind(c.String("kind")),
		ibin.WithSchemaPath(c.String("schema")),
		ibin.WithStringEncoding(c.String("encoding")),
		ibin.WithStrictTrailer(c.Bool("strict")),
		ibin.WithDebugMode(c.Bool("debug")),
	}
	if path := c.String("strings"); path != "" {
		subs, err := ibin.LoadSubstitutions(path)
		if err != nil {
			return err
		}
		opts = append(opts, ibin.WithSubstitutions(subs))
	}

	out, err := ibin.NewParser(opts...).SerializeToJSON(c.Context, data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, string(out))
	return err
}
