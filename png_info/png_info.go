// chunk walking adapted from https://github.com/parsiya/Go-Security/blob/master/png-tests/png-chunk-extraction.go

package png_info

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// 89 50 4E 47 0D 0A 1A 0A
var pngHeader = "\x89\x50\x4E\x47\x0D\x0A\x1A\x0A"
var iHDRlength = 13

// uInt32ToInt converts a 4 byte big-endian buffer to int.
func uInt32ToInt(buf []byte) (int, error) {
	if len(buf) != 4 {
		return 0, errors.New("invalid buffer")
	}

	return int(binary.BigEndian.Uint32(buf)), nil
}

// Each chunk starts with a uint32 length (big endian), then 4 byte name,
// then data and finally the CRC32 of the chunk type and data.
type chunk struct {
	Length int
	CType  string
	Data   []byte
}

// populate reads one chunk from r. io.EOF is only returned when r is
// exhausted exactly at a chunk boundary.
func (c *chunk) populate(r *bytes.Reader) error {
	buf := make([]byte, 4)

	if _, err := io.ReadFull(r, buf); err != nil {
		return err
	}

	var err error

	c.Length, err = uInt32ToInt(buf)
	if err != nil {
		return errors.New("cannot convert length to int")
	}

	if _, err = io.ReadFull(r, buf); err != nil {
		return unexpectedEOF(err)
	}

	c.CType = string(buf)

	// Length plus CRC must fit in what is left. A length above 2^31-1 turns
	// negative where int is 32 bits wide.
	if c.Length < 0 || c.Length > r.Len()-4 {
		return fmt.Errorf("chunk %q claims %d bytes, only %d left", c.CType, c.Length, r.Len())
	}

	c.Data = make([]byte, c.Length)

	if _, err = io.ReadFull(r, c.Data); err != nil {
		return unexpectedEOF(err)
	}

	// The CRC is skipped, not checked.
	if _, err = io.ReadFull(r, buf); err != nil {
		return unexpectedEOF(err)
	}

	return nil
}

func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}

	return err
}

type png struct {
	Width     int
	Height    int
	BitDepth  int
	ColorType int
	chunks    []*chunk
}

// Parse IHDR chunk.
// https://golang.org/src/image/png/reader.go?#L142 is your friend.
func (png *png) parseIHDR(iHDR *chunk) error {
	if iHDR.CType != "IHDR" {
		return fmt.Errorf("first chunk is %q, expected IHDR", iHDR.CType)
	}

	if iHDR.Length != iHDRlength {
		return fmt.Errorf("invalid IHDR length: got %d - expected %d", iHDR.Length, iHDRlength)
	}

	// Width:              4 bytes
	// Height:             4 bytes
	// Bit depth:          1 byte
	// Color type:         1 byte
	// Compression method: 1 byte
	// Filter method:      1 byte
	// Interlace method:   1 byte

	tmp := iHDR.Data

	var err error

	png.Width, err = uInt32ToInt(tmp[0:4])
	if err != nil || png.Width <= 0 {
		return fmt.Errorf("invalid width in iHDR - got %x", tmp[0:4])
	}

	png.Height, err = uInt32ToInt(tmp[4:8])
	if err != nil || png.Height <= 0 {
		return fmt.Errorf("invalid height in iHDR - got %x", tmp[4:8])
	}

	png.BitDepth = int(tmp[8])
	png.ColorType = int(tmp[9])

	return nil
}

type inspectorImpl struct {
	png *png
}

type Config struct {
	PngData []byte
}

// New walks the chunk list of a complete PNG payload. It stops after IEND.
func New(cfg Config) (Inspector, error) {
	if cfg.PngData == nil {
		return nil, errors.New("png data is nil")
	}

	header := make([]byte, 8)

	imgFile := bytes.NewReader(cfg.PngData)

	if _, err := io.ReadFull(imgFile, header); err != nil {
		return nil, fmt.Errorf("reading PNG header: %w", unexpectedEOF(err))
	}

	if string(header) != pngHeader {
		return nil, fmt.Errorf("wrong PNG header: got %x", header)
	}

	var pngImage png

	for {
		var c chunk

		err := c.populate(imgFile)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, err
		}

		pngImage.chunks = append(pngImage.chunks, &c)

		if c.CType == "IEND" {
			break
		}
	}

	if len(pngImage.chunks) == 0 {
		return nil, errors.New("no chunks after PNG header")
	}

	if err := pngImage.parseIHDR(pngImage.chunks[0]); err != nil {
		return nil, err
	}

	return &inspectorImpl{
		png: &pngImage,
	}, nil
}

type PNGInfo struct {
	Width          int
	Height         int
	BitDepth       int
	ColorType      int
	NumberOfChunks int
}

func (i *inspectorImpl) Info() *PNGInfo {
	return &PNGInfo{
		Width:          i.png.Width,
		Height:         i.png.Height,
		BitDepth:       i.png.BitDepth,
		ColorType:      i.png.ColorType,
		NumberOfChunks: len(i.png.chunks),
	}
}

func (i *inspectorImpl) ChunkTypes() []string {
	types := make([]string, 0, len(i.png.chunks))

	for _, c := range i.png.chunks {
		types = append(types, c.CType)
	}

	return types
}
