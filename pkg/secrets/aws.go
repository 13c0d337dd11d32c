package secrets

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

type secretValueGetter interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSProvider reads from AWS Secrets Manager. JSON object secrets expose
// each member as a key; anything else is stored under "value".
type AWSProvider struct {
	client secretValueGetter
}

// NewAWSProvider creates a Secrets Manager provider. endpoint is optional
// (LocalStack and friends).
func NewAWSProvider(ctx context.Context, region, endpoint string) (*AWSProvider, error) {
	if region == "" {
		return nil, fmt.Errorf("secrets: aws provider requires a region")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("secrets: failed to load aws config: %w", err)
	}

	var opts []func(*secretsmanager.Options)
	if endpoint != "" {
		opts = append(opts, func(o *secretsmanager.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}

	return &AWSProvider{client: secretsmanager.NewFromConfig(awsCfg, opts...)}, nil
}

// Name implements Provider
func (p *AWSProvider) Name() string { return "aws" }

// Fetch implements Provider
func (p *AWSProvider) Fetch(ctx context.Context, path string) (map[string]string, error) {
	out, err := p.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(path),
	})
	if err != nil {
		return nil, err
	}
	if out.SecretString == nil {
		return nil, fmt.Errorf("secret %s has no string value", path)
	}
	return decodeSecretString(*out.SecretString), nil
}

func decodeSecretString(raw string) map[string]string {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return map[string]string{"value": raw}
	}

	data := make(map[string]string, len(obj))
	for k, v := range obj {
		if s, ok := v.(string); ok {
			data[k] = s
		} else {
			data[k] = fmt.Sprint(v)
		}
	}
	return data
}
