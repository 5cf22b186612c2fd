package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"snagx_extractor/databases/sqlite"
	"snagx_extractor/discord_publisher"
	"snagx_extractor/extraction_batch"
	"snagx_extractor/png_extractor"
	"snagx_extractor/repositories/extractions"
)

type options struct {
	patterns    []string
	output      string
	dbFile      string
	showHistory bool
	webhookURL  string
	verbose     bool
}

// parseArgs accepts flags before, between and after the file patterns.
func parseArgs(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("snagx", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Extract PNG images from .snagx files.\n\nUsage: %s [options] <file or pattern> [...]\n", fs.Name())
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.output, "o", "", "Path to the output PNG file (if processing a single file)")
	fs.StringVar(&opts.output, "output", "", "Same as -o")
	fs.StringVar(&opts.dbFile, "db", "", "Record every extraction in this SQLite history file")
	fs.BoolVar(&opts.showHistory, "history", false, "Print the extraction history from -db and exit (no file patterns)")
	fs.StringVar(&opts.webhookURL, "webhook", "", "Discord webhook URL to post extracted images to")
	fs.BoolVar(&opts.verbose, "v", false, "Log offsets, size and dimensions of each extracted image")

	for len(args) > 0 {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}

		rest := fs.Args()

		// Everything after "--" is a pattern, even if it starts with "-".
		if endsWithTerminator(fs, args[:len(args)-len(rest)]) {
			opts.patterns = append(opts.patterns, rest...)

			break
		}

		if len(rest) == 0 {
			break
		}

		opts.patterns = append(opts.patterns, rest[0])
		args = rest[1:]
	}

	if opts.showHistory {
		if opts.dbFile == "" {
			return nil, errors.New("-history requires -db")
		}

		if len(opts.patterns) > 0 {
			return nil, errors.New("-history does not take file patterns")
		}

		return opts, nil
	}

	if len(opts.patterns) == 0 {
		fs.Usage()

		return nil, errors.New("no input files given")
	}

	return opts, nil
}

// endsWithTerminator reports whether parsing stopped at a "--" that ends the
// flags rather than one consumed as the value of a flag like -o.
func endsWithTerminator(fs *flag.FlagSet, consumed []string) bool {
	n := len(consumed)
	if n == 0 || consumed[n-1] != "--" {
		return false
	}

	if n == 1 {
		return true
	}

	prev := consumed[n-2]
	if !strings.HasPrefix(prev, "-") || strings.Contains(prev, "=") {
		return true
	}

	f := fs.Lookup(strings.TrimLeft(prev, "-"))
	if f == nil {
		return true
	}

	boolFlag, ok := f.Value.(interface{ IsBoolFlag() bool })

	return ok && boolFlag.IsBoolFlag()
}

func printHistory(ctx context.Context, repo extractions.Repository, stdout io.Writer) error {
	history, err := repo.List(ctx)
	if err != nil {
		return err
	}

	for _, e := range history {
		fmt.Fprintf(stdout, "%d\t%s\t%s\t%s\t%s\t%d\t%dx%d\t%s\n",
			e.ID, e.CreatedAt.Format("2006-01-02 15:04:05"), e.Status, e.SourcePath, e.DestinationPath,
			e.Size, e.Width, e.Height, e.Error)
	}

	return nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}

		fmt.Fprintf(stderr, "Error: %v\n", err)

		return 2
	}

	var extractionRepo extractions.Repository

	if opts.dbFile != "" {
		db, err := sqlite.New(ctx, opts.dbFile)
		if err != nil {
			log.Printf("Failed to open history database: %v", err)

			return 1
		}

		defer db.Close()

		extractionRepo, err = extractions.NewRepository(&extractions.Config{DB: db})
		if err != nil {
			log.Printf("Failed to create extraction repository: %v", err)

			return 1
		}
	}

	if opts.showHistory {
		err = printHistory(ctx, extractionRepo, stdout)
		if err != nil {
			log.Printf("Failed to read extraction history: %v", err)

			return 1
		}

		return 0
	}

	var publisher discord_publisher.Publisher

	if opts.webhookURL != "" {
		publisher, err = discord_publisher.New(discord_publisher.Config{
			WebhookURL: opts.webhookURL,
			Username:   "snagx",
		})
		if err != nil {
			log.Printf("Failed to create Discord publisher: %v", err)

			return 1
		}
	}

	extractor, err := png_extractor.New(png_extractor.Config{})
	if err != nil {
		log.Printf("Failed to create extractor: %v", err)

		return 1
	}

	runner, err := extraction_batch.New(extraction_batch.Config{
		Extractor:      extractor,
		ExtractionRepo: extractionRepo,
		Publisher:      publisher,
		Stdout:         stdout,
		Stderr:         stderr,
		Verbose:        opts.verbose,
	})
	if err != nil {
		log.Printf("Failed to create batch runner: %v", err)

		return 1
	}

	_, err = runner.Run(ctx, opts.patterns, opts.output)
	if err != nil {
		return 1
	}

	return 0
}

func main() {
	log.SetFlags(0)

	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
