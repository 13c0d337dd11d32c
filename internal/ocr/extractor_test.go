package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	url      string
	fileType string
}

type fakeProvider struct {
	name    string
	results []*OCRResult
	errs    []error
	calls   []call
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Extract(ctx context.Context, imageURL, fileType string) (*OCRResult, error) {
	i := len(f.calls)
	f.calls = append(f.calls, call{url: imageURL, fileType: fileType})
	var (
		res *OCRResult
		err error
	)
	if i < len(f.results) {
		res = f.results[i]
	}
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if res == nil && err == nil {
		res = &OCRResult{}
	}
	return res, err
}

func TestExtractTextWithFallback_PrimarySucceeds(t *testing.T) {
	primary := &fakeProvider{name: "primary", results: []*OCRResult{{Text: "CERTIFICATE OF INCORPORATION", Confidence: 91}}}
	secondary := &fakeProvider{name: "secondary"}

	result, err := NewExtractor(primary, secondary).ExtractTextWithFallback(context.Background(), "https://cdn.example.com/doc.pdf", "")

	require.NoError(t, err)
	assert.Equal(t, "CERTIFICATE OF INCORPORATION", result.Text)
	assert.Equal(t, 91.0, result.Confidence)
	require.Len(t, primary.calls, 1)
	assert.Equal(t, "", primary.calls[0].fileType)
	assert.Empty(t, secondary.calls)
}

func TestExtractTextWithFallback_SecondaryWithHint(t *testing.T) {
	primary := &fakeProvider{name: "primary", errs: []error{errors.New("timeout")}}
	secondary := &fakeProvider{name: "secondary", results: []*OCRResult{{Text: "KRA PIN CERTIFICATE", Confidence: 75}}}

	result, err := NewExtractor(primary, secondary).ExtractTextWithFallback(context.Background(), "https://cdn.example.com/doc.pdf", "")

	require.NoError(t, err)
	assert.Equal(t, "KRA PIN CERTIFICATE", result.Text)
	require.Len(t, secondary.calls, 1)
	assert.Equal(t, "PDF", secondary.calls[0].fileType)
}

func TestExtractTextWithFallback_RetriesWithoutHint(t *testing.T) {
	primary := &fakeProvider{name: "primary", results: []*OCRResult{{Text: "   "}}}
	secondary := &fakeProvider{
		name:    "secondary",
		results: []*OCRResult{nil, {Text: "TRADE LICENCE", Confidence: 70}},
		errs:    []error{errors.New("bad filetype"), nil},
	}

	result, err := NewExtractor(primary, secondary).ExtractTextWithFallback(context.Background(), "https://cdn.example.com/scan", "png")

	require.NoError(t, err)
	assert.Equal(t, "TRADE LICENCE", result.Text)
	require.Len(t, secondary.calls, 2)
	assert.Equal(t, "PNG", secondary.calls[0].fileType)
	assert.Equal(t, "", secondary.calls[1].fileType)
}

func TestExtractTextWithFallback_AllFail(t *testing.T) {
	primary := &fakeProvider{name: "primary", errs: []error{errors.New("down")}}
	secondary := &fakeProvider{name: "secondary", errs: []error{errors.New("down"), errors.New("down")}}

	result, err := NewExtractor(primary, secondary).ExtractTextWithFallback(context.Background(), "https://cdn.example.com/scan", "")

	require.NoError(t, err)
	assert.Equal(t, "", result.Text)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Len(t, secondary.calls, 2)
	assert.Equal(t, defaultFileHint, secondary.calls[0].fileType)
}

func TestExtract_EmptyURL(t *testing.T) {
	e := NewExtractor(&fakeProvider{name: "primary"}, nil)

	_, err := e.ExtractText(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyImageURL)

	_, err = e.ExtractTextWithFallback(context.Background(), "", "PDF")
	assert.ErrorIs(t, err, ErrEmptyImageURL)
}

func TestExtractText_PrimaryOnly(t *testing.T) {
	primary := &fakeProvider{name: "primary", errs: []error{errors.New("down")}}
	secondary := &fakeProvider{name: "secondary"}

	result, err := NewExtractor(primary, secondary).ExtractText(context.Background(), "https://cdn.example.com/a.png")

	require.NoError(t, err)
	assert.True(t, result.IsBlank())
	assert.Empty(t, secondary.calls)
}

func TestFileTypeFromURL(t *testing.T) {
	tests := map[string]string{
		"https://cdn.example.com/a.PDF":             "PDF",
		"https://cdn.example.com/a.jpeg?sig=abc":    "JPG",
		"https://cdn.example.com/dir.v2/scan.png":   "PNG",
		"https://cdn.example.com/scan.tiff":         "TIF",
		"https://cdn.example.com/scan":              "",
		"https://cdn.example.com/scan.docx#page=1":  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, FileTypeFromURL(in), in)
	}
}
