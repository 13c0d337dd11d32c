package ocr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/richxcame/crediscore/pkg/httpclient"
	"github.com/richxcame/crediscore/pkg/resilience"
)

// Provider extracts text from an image reachable at a URL
type Provider interface {
	Name() string
	Extract(ctx context.Context, imageURL, fileType string) (*OCRResult, error)
}

// OCRSpaceConfig configures one OCR.space engine
type OCRSpaceConfig struct {
	Name     string
	Endpoint string
	APIKey   string
	Engine   int
	Timeout  time.Duration
}

// OCRSpaceProvider calls the OCR.space parse/image API with a fixed engine
type OCRSpaceProvider struct {
	name    string
	client  *httpclient.Client
	apiKey  string
	engine  int
	timeout time.Duration
	breaker *resilience.CircuitBreaker
}

// NewOCRSpaceProvider builds a provider. breaker may be nil.
func NewOCRSpaceProvider(cfg OCRSpaceConfig, breaker *resilience.CircuitBreaker) *OCRSpaceProvider {
	name := cfg.Name
	if name == "" {
		name = fmt.Sprintf("ocrspace-engine%d", cfg.Engine)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &OCRSpaceProvider{
		name:    name,
		client:  httpclient.NewClient(cfg.Endpoint, timeout),
		apiKey:  cfg.APIKey,
		engine:  cfg.Engine,
		timeout: timeout,
		breaker: breaker,
	}
}

// Name returns the provider label used in logs and metrics
func (p *OCRSpaceProvider) Name() string {
	return p.name
}

type ocrSpaceWord struct {
	WordText   string   `json:"WordText"`
	Left       float64  `json:"Left"`
	Top        float64  `json:"Top"`
	Height     float64  `json:"Height"`
	Width      float64  `json:"Width"`
	Confidence *float64 `json:"Confidence,omitempty"`
}

type ocrSpaceResponse struct {
	ParsedResults []struct {
		ParsedText  string `json:"ParsedText"`
		TextOverlay struct {
			Lines []struct {
				LineText string         `json:"LineText"`
				Words    []ocrSpaceWord `json:"Words"`
			} `json:"Lines"`
		} `json:"TextOverlay"`
		ErrorMessage string `json:"ErrorMessage"`
	} `json:"ParsedResults"`
	IsErroredOnProcessing bool            `json:"IsErroredOnProcessing"`
	ErrorMessage          json.RawMessage `json:"ErrorMessage"`
}

// Extract posts the image URL and decodes text plus word boxes
func (p *OCRSpaceProvider) Extract(ctx context.Context, imageURL, fileType string) (*OCRResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	form := url.Values{}
	form.Set("url", imageURL)
	form.Set("apikey", p.apiKey)
	form.Set("OCREngine", strconv.Itoa(p.engine))
	form.Set("isOverlayRequired", "true")
	form.Set("scale", "true")
	if fileType != "" {
		form.Set("filetype", fileType)
	}

	call := func(ctx context.Context) (interface{}, error) {
		return p.client.PostForm(ctx, "", form, nil)
	}

	var (
		raw interface{}
		err error
	)
	if p.breaker != nil {
		raw, err = p.breaker.Execute(ctx, call)
	} else {
		raw, err = call(ctx)
	}
	if err != nil {
		return nil, err
	}

	body, ok := raw.([]byte)
	if !ok {
		return nil, errors.New("unexpected ocr response type")
	}
	return p.parse(body)
}

func (p *OCRSpaceProvider) parse(body []byte) (*OCRResult, error) {
	var resp ocrSpaceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode ocr response: %w", err)
	}

	if resp.IsErroredOnProcessing {
		return nil, fmt.Errorf("ocr processing failed: %s", errorMessage(resp.ErrorMessage))
	}
	if len(resp.ParsedResults) == 0 {
		return nil, errors.New("ocr returned no parsed results")
	}

	var (
		texts   []string
		boxes   []BoundingBox
		confSum float64
		confN   int
	)
	for _, pr := range resp.ParsedResults {
		if pr.ErrorMessage != "" && strings.TrimSpace(pr.ParsedText) == "" {
			return nil, fmt.Errorf("ocr page failed: %s", pr.ErrorMessage)
		}
		texts = append(texts, pr.ParsedText)

		for _, line := range pr.TextOverlay.Lines {
			for _, w := range line.Words {
				box := BoundingBox{Text: w.WordText, Left: w.Left, Top: w.Top, Width: w.Width, Height: w.Height}
				if w.Confidence != nil {
					box.Confidence = *w.Confidence
					confSum += *w.Confidence
					confN++
				}
				boxes = append(boxes, box)
			}
		}
	}

	text := strings.TrimSpace(strings.Join(texts, "\n"))
	result := &OCRResult{Text: text, BoundingBoxes: boxes, Provider: p.name}

	switch {
	case text == "":
		result.Confidence = 0
	case confN > 0:
		result.Confidence = clamp(confSum/float64(confN), 0, 100)
	default:
		result.Confidence = p.baselineConfidence()
	}

	for i := range result.BoundingBoxes {
		if result.BoundingBoxes[i].Confidence == 0 {
			result.BoundingBoxes[i].Confidence = result.Confidence
		}
	}

	return result, nil
}

// engine 2 is the higher quality model
func (p *OCRSpaceProvider) baselineConfidence() float64 {
	if p.engine >= 2 {
		return 85
	}
	return 75
}

// ErrorMessage is a string or an array of strings
func errorMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "unknown error"
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "; ")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return s
	}
	return "unknown error"
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
