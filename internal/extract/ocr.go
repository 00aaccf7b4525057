package extract

import (
	"context"
	"log/slog"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// OCR recognizes text in images through tesseract. Availability is probed
// once at construction; when tesseract is missing, Recognize is a no-op.
type OCR struct {
	enabled bool
	log     *slog.Logger
}

// NewOCR creates the image text recognizer.
func NewOCR(enabled bool, log *slog.Logger) *OCR {
	o := &OCR{log: log.With("component", "extract.ocr")}

	if !enabled {
		o.log.Info("OCR disabled by configuration")
		return o
	}

	o.enabled = probeTesseract()
	if !o.enabled {
		o.log.Warn("Tesseract not available, image text extraction disabled")
	}
	return o
}

func probeTesseract() (available bool) {
	defer func() {
		if recover() != nil {
			available = false
		}
	}()

	client := gosseract.NewClient()
	defer client.Close()
	return client.Version() != ""
}

// Recognize runs OCR over an image. It reports found=false when OCR is
// unavailable, fails, or yields only whitespace.
func (o *OCR) Recognize(ctx context.Context, image []byte) (string, bool) {
	if !o.enabled {
		o.log.DebugContext(ctx, "OCR not enabled, skipping image")
		return "", false
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetImageFromBytes(image); err != nil {
		o.log.WarnContext(ctx, "OCR could not load image", "error", err)
		return "", false
	}

	text, err := client.Text()
	if err != nil {
		o.log.WarnContext(ctx, "OCR recognition failed", "error", err)
		return "", false
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	return text, true
}
