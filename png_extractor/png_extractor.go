package png_extractor

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
)

// 89 50 4E 47 0D 0A 1A 0A
const startSignature = "\x89\x50\x4E\x47\x0D\x0A\x1A\x0A"

// IEND chunk type followed by its fixed CRC.
const endSignature = "IEND\xAE\x42\x60\x82"

const outputExtension = ".png"

// Span is a half-open byte range [Start, End) inside a source blob.
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int {
	return s.End - s.Start
}

// Locate finds the first embedded PNG in data. The end signature is searched
// for only at or after the start signature, and End includes the signature.
func Locate(data []byte) (Span, error) {
	start := bytes.Index(data, []byte(startSignature))
	if start == -1 {
		return Span{}, ErrStartSignatureNotFound
	}

	end := bytes.Index(data[start:], []byte(endSignature))
	if end == -1 {
		return Span{}, ErrEndSignatureNotFound
	}

	return Span{
		Start: start,
		End:   start + end + len(endSignature),
	}, nil
}

// DefaultDestination replaces the extension of sourcePath with ".png".
// Leading dots of the base name never start an extension, so ".snagx"
// becomes ".snagx.png".
func DefaultDestination(sourcePath string) string {
	base := strings.TrimLeft(filepath.Base(sourcePath), ".")
	if !strings.Contains(base, ".") {
		return sourcePath + outputExtension
	}

	return strings.TrimSuffix(sourcePath, filepath.Ext(base)) + outputExtension
}

type Result struct {
	SourcePath      string
	DestinationPath string
	Span            Span
	Payload         []byte
}

type extractorImpl struct {
	fileMode os.FileMode
}

type Config struct {
	// FileMode used when creating the destination. Defaults to 0644.
	FileMode os.FileMode
}

func New(cfg Config) (Extractor, error) {
	if cfg.FileMode == 0 {
		cfg.FileMode = 0o644
	}

	return &extractorImpl{
		fileMode: cfg.FileMode,
	}, nil
}

// ExtractFile copies the first PNG embedded in sourcePath to destinationPath,
// or to DefaultDestination(sourcePath) when destinationPath is empty. Nothing
// is written unless both signatures are found.
func (e *extractorImpl) ExtractFile(sourcePath, destinationPath string) (*Result, error) {
	if destinationPath == "" {
		destinationPath = DefaultDestination(sourcePath)
	}

	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, &ReadError{Path: sourcePath, Err: err}
	}

	span, err := Locate(data)
	if err != nil {
		return nil, err
	}

	payload := data[span.Start:span.End]

	err = os.WriteFile(destinationPath, payload, e.fileMode)
	if err != nil {
		return nil, &WriteError{Path: destinationPath, Err: err}
	}

	return &Result{
		SourcePath:      sourcePath,
		DestinationPath: destinationPath,
		Span:            span,
		Payload:         payload,
	}, nil
}
