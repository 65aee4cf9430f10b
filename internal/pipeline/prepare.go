package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/sistema-stock/ocr-service/internal/common"
)

// maxDimension bounds the longer image side before OCR; anything bigger is
// scaled down preserving aspect ratio.
const maxDimension = 2000

// Preparer preprocesses a downloaded image for recognition. The returned
// cleanup removes the intermediate file.
type Preparer interface {
	Prepare(ctx context.Context, path string) (prepared string, cleanup func(), err error)
}

type imagingPreparer struct {
	cacheDir string
	logger   *slog.Logger
}

// NewImagingPreparer builds the standard grayscale/contrast/sharpen chain
// that lifts recognition quality on phone photos of delivery notes.
func NewImagingPreparer(cacheDir string, logger *slog.Logger) Preparer {
	if logger == nil {
		logger = slog.Default()
	}
	if cacheDir == "" {
		cacheDir = "./tmp"
	}
	return &imagingPreparer{cacheDir: cacheDir, logger: logger}
}

func (p *imagingPreparer) Prepare(ctx context.Context, path string) (string, func(), error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		p.logger.Error("image decode failed", "path", path, "error", err)
		return "", nil, common.WrapError(err, "decode image")
	}

	b := img.Bounds()
	if b.Dx() > maxDimension || b.Dy() > maxDimension {
		img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	}

	img = imaging.Grayscale(img)
	img = imaging.AdjustContrast(img, 30)
	img = imaging.Sharpen(img, 1.5)

	out := p.preparedPath(path)
	if err := imaging.Save(img, out); err != nil {
		p.logger.Error("image save failed", "path", out, "error", err)
		return "", nil, common.WrapError(err, "save prepared image")
	}

	p.logger.Debug("image prepared", "source", path, "prepared", out,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return out, func() { _ = os.Remove(out) }, nil
}

func (p *imagingPreparer) preparedPath(src string) string {
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	return filepath.Join(p.cacheDir, base+"-prep.png")
}
