package cdn

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"redust/internal/logging"
	"redust/internal/services"
)

// CatalogName is the catalog file published for every bundle version.
const CatalogName = "catalog_alpha.json"

// Progress receives the number of bytes written so far and the expected
// total, which is -1 when the server does not report a length.
type Progress func(done, total int64)

// FetchCatalog downloads the catalog for quality and version into w.
func (c *Client) FetchCatalog(ctx context.Context, quality, version string, w io.Writer) (int64, error) {
	return c.fetch(ctx, "fetch catalog", quality, version, CatalogName, w, nil)
}

// DownloadBundle streams one bundle into w in 64 KiB chunks, reporting
// progress after each chunk.
func (c *Client) DownloadBundle(ctx context.Context, quality, version, remoteName string, w io.Writer, progress Progress) (int64, error) {
	return c.fetch(ctx, "download bundle", quality, version, remoteName, w, progress)
}

func (c *Client) fetch(ctx context.Context, op, quality, version, name string, w io.Writer, progress Progress) (int64, error) {
	target, err := c.AssetURL(quality, version, name)
	if err != nil {
		return 0, services.Wrap(services.ErrConfiguration, "cdn", op, "", err)
	}
	resp, body, err := c.open(ctx, op, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	})
	if err != nil {
		return 0, err
	}
	defer body.Close()

	total := resp.ContentLength
	if resp.Header.Get("Content-Encoding") != "" {
		total = -1
	}
	c.logger.Debug("cdn transfer started",
		logging.String("operation", op),
		logging.String("url", target),
		logging.Size("content_length", total),
	)

	n, err := copyChunks(ctx, w, body, total, progress)
	if err != nil {
		return n, services.Wrap(services.ErrTransient, "cdn", op, name, err)
	}
	if total >= 0 && n != total {
		return n, services.Wrap(services.ErrTransient, "cdn", op, name, fmt.Errorf("short body: got %d of %d bytes", n, total))
	}
	return n, nil
}

func copyChunks(ctx context.Context, w io.Writer, r io.Reader, total int64, progress Progress) (int64, error) {
	buf := make([]byte, chunkSize)
	var done int64
	for {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		n, readErr := r.Read(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				return done, fmt.Errorf("write: %w", err)
			}
			done += int64(n)
			if progress != nil {
				progress(done, total)
			}
		}
		if readErr == io.EOF {
			return done, nil
		}
		if readErr != nil {
			return done, fmt.Errorf("read: %w", readErr)
		}
	}
}
