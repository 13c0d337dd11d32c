package ocr

import (
	"errors"
	"strings"
)

// ErrEmptyImageURL is returned when extraction is requested without an image
var ErrEmptyImageURL = errors.New("image url is required")

// BoundingBox is a recognised word with its position on the page
type BoundingBox struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Left       float64 `json:"left"`
	Top        float64 `json:"top"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
}

// OCRResult is the output of one extraction
type OCRResult struct {
	Text          string        `json:"text"`
	Confidence    float64       `json:"confidence"`
	BoundingBoxes []BoundingBox `json:"bounding_boxes,omitempty"`
	Provider      string        `json:"provider,omitempty"`
}

// IsBlank reports whether no usable text was recognised
func (r *OCRResult) IsBlank() bool {
	return r == nil || strings.TrimSpace(r.Text) == ""
}

// EmptyResult is returned when every provider failed or saw nothing
func EmptyResult() *OCRResult {
	return &OCRResult{Text: "", Confidence: 0}
}
