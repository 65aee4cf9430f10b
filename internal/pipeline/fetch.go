package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/sistema-stock/ocr-service/internal/common"
)

// Fetcher downloads a remote image into the local artifact cache. The
// returned cleanup removes the downloaded file.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (path string, cleanup func(), err error)
}

type httpFetcher struct {
	client   *http.Client
	cacheDir string
	maxBytes int64
	logger   *slog.Logger
}

// NewHTTPFetcher builds a Fetcher that rejects images larger than
// maxSizeMB. Signed storage URLs are expected, so no auth is attached.
func NewHTTPFetcher(cacheDir string, maxSizeMB int, timeout time.Duration, logger *slog.Logger) Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	if cacheDir == "" {
		cacheDir = "./tmp"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &httpFetcher{
		client:   &http.Client{Timeout: timeout},
		cacheDir: cacheDir,
		maxBytes: int64(maxSizeMB) << 20,
		logger:   logger,
	}
}

func (f *httpFetcher) Fetch(ctx context.Context, url string) (string, func(), error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", nil, common.WrapError(err, "build image request")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Error("image download failed", "url", url, "error", err)
		return "", nil, common.WrapError(err, "download image")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		f.logger.Error("image download failed", "url", url, "status", resp.StatusCode)
		return "", nil, common.NewAppError("FETCH_ERROR",
			fmt.Sprintf("image download returned status %d", resp.StatusCode), common.ErrInvalidInput)
	}
	if resp.ContentLength > f.maxBytes {
		return "", nil, f.tooLarge(resp.ContentLength)
	}

	if err := os.MkdirAll(f.cacheDir, 0o755); err != nil {
		return "", nil, common.WrapError(err, "create artifact cache dir")
	}
	tmp, err := os.CreateTemp(f.cacheDir, "fetch-*.img")
	if err != nil {
		return "", nil, common.WrapError(err, "create temp file")
	}
	cleanup := func() { _ = os.Remove(tmp.Name()) }

	// Content-Length can lie or be absent, so the copy is capped too.
	n, err := io.Copy(tmp, io.LimitReader(resp.Body, f.maxBytes+1))
	closeErr := tmp.Close()
	if err != nil {
		cleanup()
		return "", nil, common.WrapError(err, "write image")
	}
	if closeErr != nil {
		cleanup()
		return "", nil, common.WrapError(closeErr, "write image")
	}
	if n > f.maxBytes {
		cleanup()
		return "", nil, f.tooLarge(n)
	}

	f.logger.Debug("image downloaded", "url", url, "bytes", n, "path", tmp.Name())
	return tmp.Name(), cleanup, nil
}

func (f *httpFetcher) tooLarge(n int64) error {
	return common.NewAppError("IMAGE_TOO_LARGE",
		fmt.Sprintf("image too large: %.1fMB (max: %dMB)", float64(n)/(1<<20), f.maxBytes>>20),
		common.ErrInvalidInput)
}
