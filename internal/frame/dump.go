package frame

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/image/bmp"
)

// WriteBMP encodes the buffer as an uncompressed BMP
func (b *PixelBuffer) WriteBMP(w io.Writer) error {
	if err := bmp.Encode(w, b); err != nil {
		return fmt.Errorf("failed to encode BMP: %w", err)
	}
	return nil
}

// DumpBMP writes the buffer to path, replacing any existing file
func (b *PixelBuffer) DumpBMP(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dump file: %w", err)
	}

	if err := b.WriteBMP(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
