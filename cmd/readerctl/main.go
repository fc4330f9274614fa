// Command readerctl inspects a library without running the server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/urfave/cli/v3"

	"github.com/disanlib/reader-server/internal/logger"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "readerctl: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:            "readerctl",
		Usage:           "inspect books, pages and chat answers of a reader library",
		Version:         version,
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "library", Aliases: []string{"l"}, Usage: "read books from `DIR` instead of the built-in seed library"},
			&cli.StringFlag{Name: "log-level", Value: "warn", Usage: "log `LEVEL` (debug, info, warn, error)"},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			log := logger.New(logger.Config{
				Writer: os.Stderr,
				Level:  logger.ParseLevel(cmd.String("log-level")),
			})
			return withLogger(ctx, log), nil
		},
		Commands: []*cli.Command{
			{
				Name:   "books",
				Usage:  "Lists books in the library",
				Action: listBooks,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "only list books in `CATEGORY`"},
				},
			},
			{
				Name:   "paginate",
				Usage:  "Prints the pages of a chapter at a font size",
				Action: paginateChapter,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "book", Aliases: []string{"b"}, Required: true, Usage: "book `ID`"},
					&cli.IntFlag{Name: "chapter", Usage: "chapter `INDEX`, zero based"},
					&cli.IntFlag{Name: "font-size", Value: 18, Usage: "font size in `POINTS`"},
					&cli.BoolFlag{Name: "count", Usage: "print page counts only"},
				},
			},
			{
				Name:      "ask",
				Usage:     "Asks the chat assistant a question",
				Action:    ask,
				ArgsUsage: "QUESTION",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "provider", Value: "auto", Usage: "responder `NAME` (auto, gemini, anthropic, local)"},
					&cli.StringFlag{Name: "rules", Usage: "keyword rules `FILE` (YAML) for the local responder"},
				},
			},
		},
	}
}
