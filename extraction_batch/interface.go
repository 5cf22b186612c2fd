package extraction_batch

import "context"

type Runner interface {
	Run(ctx context.Context, patterns []string, outputPath string) (*Summary, error)
}
