package ocr

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/richxcame/crediscore/pkg/logger"
	"github.com/richxcame/crediscore/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const defaultFileHint = "JPG"

// Attempt is one step of the fallback chain
type Attempt struct {
	Provider Provider
	UseHint  bool
}

// Extractor runs OCR providers in order until one returns text
type Extractor struct {
	primary  Provider
	attempts []Attempt
}

// NewExtractor builds the standard chain: primary without a hint, then
// secondary with the file hint, then secondary without it.
func NewExtractor(primary, secondary Provider) *Extractor {
	attempts := []Attempt{{Provider: primary}}
	if secondary != nil {
		attempts = append(attempts,
			Attempt{Provider: secondary, UseHint: true},
			Attempt{Provider: secondary},
		)
	}
	return &Extractor{primary: primary, attempts: attempts}
}

// NewExtractorWithAttempts builds an extractor from an explicit chain
func NewExtractorWithAttempts(attempts ...Attempt) *Extractor {
	e := &Extractor{attempts: attempts}
	if len(attempts) > 0 {
		e.primary = attempts[0].Provider
	}
	return e
}

// ExtractText runs only the primary provider. Failures degrade to an empty result.
func (e *Extractor) ExtractText(ctx context.Context, imageURL string) (*OCRResult, error) {
	if strings.TrimSpace(imageURL) == "" {
		return nil, ErrEmptyImageURL
	}
	if e.primary == nil {
		return EmptyResult(), nil
	}

	result, err := e.run(ctx, Attempt{Provider: e.primary}, imageURL, "")
	if err != nil {
		logger.WithContext(ctx).Warn("ocr extraction failed", zap.String("provider", e.primary.Name()), zap.Error(err))
		return EmptyResult(), nil
	}
	return result, nil
}

// ExtractTextWithFallback walks the chain and returns the first non-blank result.
// When every attempt fails the result is empty with zero confidence.
func (e *Extractor) ExtractTextWithFallback(ctx context.Context, imageURL, fileHint string) (*OCRResult, error) {
	if strings.TrimSpace(imageURL) == "" {
		return nil, ErrEmptyImageURL
	}

	hint := strings.ToUpper(strings.TrimSpace(fileHint))
	if hint == "" {
		hint = FileTypeFromURL(imageURL)
	}
	if hint == "" {
		hint = defaultFileHint
	}

	var failures []error
	for i, attempt := range e.attempts {
		result, err := e.run(ctx, attempt, imageURL, hint)
		if err == nil && !result.IsBlank() {
			if len(failures) > 0 {
				logger.WithContext(ctx).Info("ocr succeeded after fallback",
					zap.String("provider", attempt.Provider.Name()),
					zap.Int("attempt", i+1),
				)
			}
			return result, nil
		}
		if err == nil {
			err = errors.New("empty text")
		}
		failures = append(failures, fmt.Errorf("attempt %d (%s): %w", i+1, attempt.Provider.Name(), err))
	}

	logger.WithContext(ctx).Warn("all ocr attempts failed, document needs manual review",
		zap.String("image_url", imageURL),
		zap.Error(errors.Join(failures...)),
	)
	return EmptyResult(), nil
}

func (e *Extractor) run(ctx context.Context, attempt Attempt, imageURL, hint string) (*OCRResult, error) {
	fileType := ""
	if attempt.UseHint {
		fileType = hint
	}

	ctx, span := tracing.StartSpan(ctx, "ocr.extract",
		attribute.String("ocr.provider", attempt.Provider.Name()),
		attribute.String("ocr.filetype", fileType),
	)

	result, err := attempt.Provider.Extract(ctx, imageURL, fileType)
	tracing.EndSpan(span, err)

	switch {
	case err != nil:
		recordAttempt(attempt.Provider.Name(), "error")
	case result.IsBlank():
		recordAttempt(attempt.Provider.Name(), "empty")
	default:
		recordAttempt(attempt.Provider.Name(), "success")
	}
	return result, err
}

// FileTypeFromURL maps the URL path extension to an OCR file type hint
func FileTypeFromURL(imageURL string) string {
	p := imageURL
	if u, err := url.Parse(imageURL); err == nil {
		p = u.Path
	}

	switch strings.ToLower(path.Ext(p)) {
	case ".pdf":
		return "PDF"
	case ".png":
		return "PNG"
	case ".jpg", ".jpeg":
		return "JPG"
	case ".gif":
		return "GIF"
	case ".bmp":
		return "BMP"
	case ".tif", ".tiff":
		return "TIF"
	default:
		return ""
	}
}
