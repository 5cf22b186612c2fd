package entities

import "time"

type ExtractionStatus string

const (
	ExtractionStatusOK            ExtractionStatus = "ok"
	ExtractionStatusReadError     ExtractionStatus = "read_error"
	ExtractionStatusStartNotFound ExtractionStatus = "start_not_found"
	ExtractionStatusEndNotFound   ExtractionStatus = "end_not_found"
	ExtractionStatusWriteError    ExtractionStatus = "write_error"
)

type Extraction struct {
	ID              int64            `json:"id"`
	SourcePath      string           `json:"source_path"`
	DestinationPath string           `json:"destination_path"`
	Status          ExtractionStatus `json:"status"`
	Error           string           `json:"error"`
	StartOffset     int              `json:"start_offset"`
	EndOffset       int              `json:"end_offset"`
	Size            int              `json:"size"`
	Width           int              `json:"width"`
	Height          int              `json:"height"`
	CreatedAt       time.Time        `json:"created_at"`
}
