package extraction_batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"snagx_extractor/discord_publisher"
	"snagx_extractor/entities"
	"snagx_extractor/png_extractor"
	"snagx_extractor/png_info"
	"snagx_extractor/repositories/extractions"
)

var (
	ErrNoInputFiles             = errors.New("no input files to process")
	ErrOutputWithMultipleInputs = errors.New("cannot specify a single output file when processing multiple input files")
)

type Summary struct {
	Processed int
	Extracted int
}

func (s *Summary) String() string {
	return fmt.Sprintf("Processed %d file(s), successfully extracted %d PNG image(s).", s.Processed, s.Extracted)
}

type runnerImpl struct {
	extractor      png_extractor.Extractor
	extractionRepo extractions.Repository
	publisher      discord_publisher.Publisher
	stdout         io.Writer
	stderr         io.Writer
	verbose        bool
}

// Config for the runner. ExtractionRepo and Publisher are optional.
type Config struct {
	Extractor      png_extractor.Extractor
	ExtractionRepo extractions.Repository
	Publisher      discord_publisher.Publisher
	Stdout         io.Writer
	Stderr         io.Writer
	Verbose        bool
}

func New(cfg Config) (Runner, error) {
	if cfg.Extractor == nil {
		return nil, errors.New("missing extractor")
	}

	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}

	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}

	return &runnerImpl{
		extractor:      cfg.Extractor,
		extractionRepo: cfg.ExtractionRepo,
		publisher:      cfg.Publisher,
		stdout:         cfg.Stdout,
		stderr:         cfg.Stderr,
		verbose:        cfg.Verbose,
	}, nil
}

// ExpandPatterns expands shell-style wildcards in order. Patterns that match
// nothing are reported on stderr and skipped.
func ExpandPatterns(patterns []string, stderr io.Writer) []string {
	inputFiles := make([]string, 0, len(patterns))

	for _, pattern := range patterns {
		matched, err := glob(pattern)
		if err != nil {
			fmt.Fprintf(stderr, "Invalid pattern '%s': %v\n", pattern, err)

			continue
		}

		if len(matched) == 0 {
			fmt.Fprintf(stderr, "No files matched the pattern '%s'.\n", pattern)

			continue
		}

		inputFiles = append(inputFiles, matched...)
	}

	return inputFiles
}

// glob behaves like a shell: wildcards skip dot-files unless the last
// pattern element starts with a dot, and a malformed pattern such as an
// unclosed '[' is taken literally.
func glob(pattern string) ([]string, error) {
	matched, err := filepath.Glob(pattern)
	if errors.Is(err, filepath.ErrBadPattern) {
		if _, statErr := os.Lstat(pattern); statErr != nil {
			return nil, nil
		}

		return []string{pattern}, nil
	}

	if err != nil {
		return nil, err
	}

	if strings.HasPrefix(filepath.Base(pattern), ".") {
		return matched, nil
	}

	visible := matched[:0]

	for _, m := range matched {
		if !strings.HasPrefix(filepath.Base(m), ".") {
			visible = append(visible, m)
		}
	}

	return visible, nil
}

// Run processes every file matched by patterns one after another. Per-file
// failures are reported and counted; only an empty selection or an output
// path combined with several inputs abort the batch.
func (r *runnerImpl) Run(ctx context.Context, patterns []string, outputPath string) (*Summary, error) {
	inputFiles := ExpandPatterns(patterns, r.stderr)

	if len(inputFiles) == 0 {
		fmt.Fprintln(r.stderr, "No input files to process.")

		return nil, ErrNoInputFiles
	}

	if outputPath != "" && len(inputFiles) > 1 {
		fmt.Fprintln(r.stderr, "Error: Cannot specify a single output file when processing multiple input files.")

		return nil, ErrOutputWithMultipleInputs
	}

	summary := &Summary{}

	for _, inputFile := range inputFiles {
		if r.processFile(ctx, inputFile, outputPath) {
			summary.Extracted++
		}

		summary.Processed++
	}

	fmt.Fprintln(r.stdout, summary.String())

	return summary, nil
}

func (r *runnerImpl) processFile(ctx context.Context, sourcePath, destinationPath string) bool {
	if destinationPath == "" {
		destinationPath = png_extractor.DefaultDestination(sourcePath)
	}

	record := &entities.Extraction{
		SourcePath:      sourcePath,
		DestinationPath: destinationPath,
	}

	result, err := r.extractor.ExtractFile(sourcePath, destinationPath)
	if err != nil {
		r.reportFailure(sourcePath, err)

		record.Status = statusFor(err)
		record.Error = err.Error()
		r.record(ctx, record)

		return false
	}

	fmt.Fprintf(r.stdout, "PNG image extracted and saved to '%s'.\n", result.DestinationPath)

	record.Status = entities.ExtractionStatusOK
	record.StartOffset = result.Span.Start
	record.EndOffset = result.Span.End
	record.Size = result.Span.Len()

	inspector, err := png_info.New(png_info.Config{PngData: result.Payload})
	if err != nil {
		if r.verbose {
			log.Printf("Could not read PNG chunks of '%s': %v", result.DestinationPath, err)
		}
	} else {
		info := inspector.Info()
		record.Width = info.Width
		record.Height = info.Height

		if r.verbose {
			log.Printf("'%s': PNG at bytes %d-%d (%d bytes), %dx%d, %d chunks",
				sourcePath, result.Span.Start, result.Span.End, result.Span.Len(),
				info.Width, info.Height, info.NumberOfChunks)
		}
	}

	r.record(ctx, record)

	if r.publisher != nil {
		err = r.publisher.Publish(sourcePath, result.DestinationPath, result.Payload)
		if err != nil {
			log.Printf("Error posting '%s' to Discord: %v", result.DestinationPath, err)
		}
	}

	return true
}

func (r *runnerImpl) reportFailure(sourcePath string, err error) {
	var (
		writeErr *png_extractor.WriteError
		readErr  *png_extractor.ReadError
	)

	switch {
	case errors.Is(err, png_extractor.ErrStartSignatureNotFound):
		fmt.Fprintf(r.stderr, "Could not find PNG start signature in file '%s'.\n", sourcePath)
	case errors.Is(err, png_extractor.ErrEndSignatureNotFound):
		fmt.Fprintf(r.stderr, "Could not find PNG end signature in file '%s'.\n", sourcePath)
	case errors.As(err, &writeErr):
		fmt.Fprintf(r.stderr, "Error writing to file '%s': %v\n", writeErr.Path, writeErr.Err)
	case errors.Is(err, os.ErrNotExist):
		fmt.Fprintf(r.stderr, "Error: File '%s' not found.\n", sourcePath)
	case errors.As(err, &readErr):
		fmt.Fprintf(r.stderr, "Error reading file '%s': %v\n", readErr.Path, readErr.Err)
	default:
		fmt.Fprintf(r.stderr, "Error processing file '%s': %v\n", sourcePath, err)
	}
}

func statusFor(err error) entities.ExtractionStatus {
	switch {
	case errors.Is(err, png_extractor.ErrStartSignatureNotFound):
		return entities.ExtractionStatusStartNotFound
	case errors.Is(err, png_extractor.ErrEndSignatureNotFound):
		return entities.ExtractionStatusEndNotFound
	case errors.Is(err, &png_extractor.WriteError{}):
		return entities.ExtractionStatusWriteError
	default:
		return entities.ExtractionStatusReadError
	}
}

func (r *runnerImpl) record(ctx context.Context, extraction *entities.Extraction) {
	if r.extractionRepo == nil {
		return
	}

	_, err := r.extractionRepo.Create(ctx, extraction)
	if err != nil {
		log.Printf("Error recording extraction of '%s': %v", extraction.SourcePath, err)
	}
}
