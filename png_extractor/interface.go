package png_extractor

type Extractor interface {
	ExtractFile(sourcePath, destinationPath string) (*Result, error)
}
