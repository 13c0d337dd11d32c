package fraud

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/richxcame/crediscore/pkg/config"
	"github.com/richxcame/crediscore/pkg/httpclient"
	"github.com/richxcame/crediscore/pkg/logger"
	"github.com/richxcame/crediscore/pkg/resilience"
	"github.com/richxcame/crediscore/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const defaultTimeout = 10 * time.Second

// Detector scores reviews through the remote fraud-scoring service
type Detector struct {
	client  *httpclient.Client
	breaker *resilience.CircuitBreaker
	retry   resilience.RetryConfig
	timeout time.Duration
}

func scoringRetryConfig() resilience.RetryConfig {
	cfg := resilience.ConservativeRetryConfig()
	cfg.RetryableChecker = httpclient.IsRetryable
	return cfg
}

// NewDetector creates a detector. breaker may be nil.
func NewDetector(cfg config.FraudServiceConfig, breaker *resilience.CircuitBreaker) *Detector {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Detector{
		client:  httpclient.NewClient(strings.TrimRight(cfg.BaseURL, "/"), timeout),
		breaker: breaker,
		retry:   scoringRetryConfig(),
		timeout: timeout,
	}
}

// Detect scores a review. Any failure of the remote service yields SafeVerdict;
// the only error is ErrMissingBusinessDetails for a malformed request.
func (d *Detector) Detect(ctx context.Context, req *DetectRequest) (*FraudVerdict, error) {
	if req == nil || strings.TrimSpace(req.BusinessDetails.Name) == "" {
		return nil, ErrMissingBusinessDetails
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	ctx, span := tracing.StartSpan(ctx, "fraud.detect",
		attribute.Int("review.length", len(req.ReviewText)),
		attribute.Bool("review.has_receipt", req.ReceiptData != nil),
	)
	verdict, err := d.detect(ctx, req)
	tracing.EndSpan(span, err)

	if err != nil {
		logger.WithContext(ctx).Warn("fraud service unavailable, using safe verdict", zap.Error(err))
		recordCheck(outcomeUnavailable)
		return SafeVerdict(), nil
	}

	if verdict.IsFraudulent {
		recordCheck(outcomeFraudulent)
	} else {
		recordCheck(outcomeClean)
	}
	return verdict, nil
}

func (d *Detector) detect(ctx context.Context, req *DetectRequest) (*FraudVerdict, error) {
	call := func(ctx context.Context) (interface{}, error) {
		return d.client.Post(ctx, "/detect-fraud", req, nil)
	}

	raw, err := d.execute(ctx, call)
	if err != nil {
		return nil, err
	}

	var verdict FraudVerdict
	if err := json.Unmarshal(raw, &verdict); err != nil {
		return nil, fmt.Errorf("failed to decode fraud verdict: %w", err)
	}
	return verdict.Clamp(), nil
}

// HealthCheck asks the scoring service whether it is alive
func (d *Detector) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	raw, err := d.client.Get(ctx, "/health", nil)
	if err != nil {
		return nil, fmt.Errorf("fraud service health check failed: %w", err)
	}

	var status HealthStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, fmt.Errorf("failed to decode fraud service health: %w", err)
	}
	if status.Status != "healthy" {
		return &status, fmt.Errorf("fraud service reports status %q", status.Status)
	}
	return &status, nil
}

// Ping adapts HealthCheck for dependency health endpoints
func (d *Detector) Ping(ctx context.Context) error {
	_, err := d.HealthCheck(ctx)
	return err
}

// execute retries transient failures within the request timeout; every
// attempt counts against the breaker.
func (d *Detector) execute(ctx context.Context, call resilience.Operation) ([]byte, error) {
	var (
		raw interface{}
		err error
	)
	if d.breaker != nil {
		raw, err = resilience.RetryWithBreaker(ctx, d.retry, d.breaker, call)
	} else {
		raw, err = resilience.Retry(ctx, d.retry, call)
	}
	if err != nil {
		return nil, err
	}

	body, ok := raw.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected fraud service response type %T", raw)
	}
	return body, nil
}
