package spine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"redust/internal/fileutil"
)

// ConvertFile reads skeleton JSON from src and writes the binary form to
// dst. A failed conversion never leaves a partial dst behind.
func ConvertFile(ctx context.Context, src, dst string) (*Document, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("read skeleton: %w", err)
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, err
	}
	if err := CheckVersion(doc); err != nil {
		return doc, err
	}
	if err := ctx.Err(); err != nil {
		return doc, err
	}

	err = fileutil.WriteAtomic(dst, 0o644, func(w io.Writer) error {
		buf := bufio.NewWriter(w)
		if err := Encode(buf, doc); err != nil {
			return fmt.Errorf("encode skeleton: %w", err)
		}
		return buf.Flush()
	})
	return doc, err
}
