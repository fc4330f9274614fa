package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"text/tabwriter"

	cli "github.com/urfave/cli/v3"

	"github.com/disanlib/reader-server/internal/chat"
	"github.com/disanlib/reader-server/internal/domain"
	"github.com/disanlib/reader-server/internal/library"
	"github.com/disanlib/reader-server/internal/logger"
	"github.com/disanlib/reader-server/internal/pagination"
)

type loggerKey struct{}

func withLogger(ctx context.Context, log *logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, log)
}

func loggerFrom(ctx context.Context) *logger.Logger {
	if log, ok := ctx.Value(loggerKey{}).(*logger.Logger); ok {
		return log
	}
	return &logger.Logger{Logger: logger.Discard()}
}

func loadCatalog(ctx context.Context, cmd *cli.Command) (*library.Catalog, error) {
	var fsys fs.FS
	if dir := cmd.String("library"); dir != "" {
		fsys = os.DirFS(dir)
	} else {
		fsys = library.Seed()
	}
	return library.NewLoader(fsys, loggerFrom(ctx).Component("library")).Load(ctx)
}

func listBooks(ctx context.Context, cmd *cli.Command) error {
	catalog, err := loadCatalog(ctx, cmd)
	if err != nil {
		return err
	}

	books := catalog.Books()
	if c := cmd.String("category"); c != "" {
		books = catalog.ByCategory(domain.Category(c))
	}

	tw := tabwriter.NewWriter(cmd.Root().Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tCHAPTERS\tMINUTES")
	for _, b := range books {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", b.ID, b.Title, b.Category, len(b.Chapters), b.ReadingTimeMinutes)
	}
	return tw.Flush()
}

func paginateChapter(ctx context.Context, cmd *cli.Command) error {
	catalog, err := loadCatalog(ctx, cmd)
	if err != nil {
		return err
	}

	id := cmd.String("book")
	book, ok := catalog.Book(id)
	if !ok {
		return fmt.Errorf("book %q not found", id)
	}

	fontSize := domain.ClampFontSize(int(cmd.Int("font-size")))
	out := cmd.Root().Writer

	if cmd.Bool("count") {
		for i, ch := range book.Chapters {
			fmt.Fprintf(out, "%d\t%d\t%s\n", i, pagination.PageCount(ch.Content, fontSize), ch.Title)
		}
		return nil
	}

	index := int(cmd.Int("chapter"))
	if index < 0 || index >= len(book.Chapters) {
		return fmt.Errorf("chapter %d out of range, book has %d", index, len(book.Chapters))
	}

	ch := book.Chapters[index]
	pages := pagination.Paginate(ch.Content, fontSize)
	fmt.Fprintf(out, "%s / %s (font %d, %d words per page)\n", book.Title, ch.Title, fontSize, pagination.WordsPerPage(fontSize))
	for i, p := range pages {
		fmt.Fprintf(out, "\n--- page %d/%d, %d words ---\n%s\n", i+1, len(pages), len(strings.Fields(p)), p)
	}
	return nil
}

func ask(ctx context.Context, cmd *cli.Command) error {
	question := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if question == "" {
		return errors.New("ask needs a QUESTION")
	}

	log := loggerFrom(ctx).Component("chat")
	r, err := chat.NewResponder(chat.Settings{
		Provider:        cmd.String("provider"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		RulesPath:       cmd.String("rules"),
	}, log)
	if err != nil {
		return err
	}

	answer, err := r.Respond(ctx, question)
	if err != nil {
		log.Warn("Responder failed", "provider", r.Name(), "error", err)
		answer = chat.Apology
	}
	fmt.Fprintf(cmd.Root().Writer, "[%s] %s\n", r.Name(), answer)
	return nil
}
