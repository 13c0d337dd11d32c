package secrets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/richxcame/crediscore/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	secrets map[string]map[string]string
	calls   int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Fetch(ctx context.Context, path string) (map[string]string, error) {
	f.calls++
	data, ok := f.secrets[path]
	if !ok {
		return nil, errors.New("no such secret")
	}
	return data, nil
}

// ============================================================================
// ParseRef
// ============================================================================

func TestParseRef(t *testing.T) {
	tests := []struct {
		raw     string
		want    Ref
		wantErr bool
	}{
		{raw: "secret://crediscore/completion#api_key", want: Ref{Path: "crediscore/completion", Key: "api_key"}},
		{raw: "secret://ocr", want: Ref{Path: "ocr", Key: "value"}},
		{raw: "  secret:///db/ #password ", want: Ref{Path: "db", Key: "password"}},
		{raw: "secret://a#b#c", want: Ref{Path: "a#b", Key: "c"}},
		{raw: "plain-api-key", wantErr: true},
		{raw: "secret://", wantErr: true},
		{raw: "secret://path#", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			ref, err := ParseRef(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRef)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ref)
		})
	}
}

func TestIsRef(t *testing.T) {
	assert.True(t, IsRef("secret://x"))
	assert.True(t, IsRef(" secret://x"))
	assert.False(t, IsRef("sk-live-123"))
	assert.False(t, IsRef(""))
}

// ============================================================================
// Resolver
// ============================================================================

func TestResolver_CachesByPath(t *testing.T) {
	provider := &fakeProvider{secrets: map[string]map[string]string{
		"crediscore/apis": {"ocr": "ocr-key", "completion": "sk-123"},
	}}
	r := NewResolver(provider, time.Minute)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	ctx := context.Background()

	v, err := r.Resolve(ctx, "secret://crediscore/apis#ocr")
	require.NoError(t, err)
	assert.Equal(t, "ocr-key", v)

	v, err = r.Resolve(ctx, "secret://crediscore/apis#completion")
	require.NoError(t, err)
	assert.Equal(t, "sk-123", v)
	assert.Equal(t, 1, provider.calls)

	now = now.Add(2 * time.Minute)
	_, err = r.Resolve(ctx, "secret://crediscore/apis#ocr")
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls)
}

func TestResolver_NoCache(t *testing.T) {
	provider := &fakeProvider{secrets: map[string]map[string]string{"db": {"value": "pw"}}}
	r := NewResolver(provider, 0)

	for i := 0; i < 3; i++ {
		_, err := r.Resolve(context.Background(), "secret://db")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, provider.calls)
}

func TestResolver_Errors(t *testing.T) {
	provider := &fakeProvider{secrets: map[string]map[string]string{"db": {"password": ""}}}
	r := NewResolver(provider, time.Minute)
	ctx := context.Background()

	_, err := r.Resolve(ctx, "secret://db#user")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	_, err = r.Resolve(ctx, "secret://db#password")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	_, err = r.Resolve(ctx, "secret://missing")
	assert.ErrorContains(t, err, "fake fetch of missing failed")

	_, err = r.Resolve(ctx, "not-a-ref")
	assert.ErrorIs(t, err, ErrInvalidRef)
}

// ============================================================================
// Apply
// ============================================================================

func TestApply(t *testing.T) {
	provider := &fakeProvider{secrets: map[string]map[string]string{
		"crediscore": {"completion": "sk-live", "db": "s3cret"},
	}}
	cfg := &config.Config{}
	cfg.Completion.APIKey = "secret://crediscore#completion"
	cfg.Database.Password = "secret://crediscore#db"
	cfg.OCR.APIKey = "literal-ocr-key"

	require.NoError(t, Apply(context.Background(), NewResolver(provider, time.Minute), cfg))

	assert.Equal(t, "sk-live", cfg.Completion.APIKey)
	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, "literal-ocr-key", cfg.OCR.APIKey)
	assert.Equal(t, 1, provider.calls)
}

func TestApply_Errors(t *testing.T) {
	cfg := &config.Config{}
	cfg.Sentry.DSN = "secret://sentry"
	assert.ErrorContains(t, Apply(context.Background(), nil, cfg), "SENTRY_DSN")

	cfg = &config.Config{}
	cfg.OCR.APIKey = "secret://ocr#key"
	err := Apply(context.Background(), NewResolver(&fakeProvider{}, time.Minute), cfg)
	assert.ErrorContains(t, err, "OCR_API_KEY")
	assert.Equal(t, "secret://ocr#key", cfg.OCR.APIKey)

	assert.NoError(t, Apply(context.Background(), nil, &config.Config{}))
}

// ============================================================================
// Providers
// ============================================================================

func TestNewResolverFromConfig(t *testing.T) {
	r, err := NewResolverFromConfig(context.Background(), config.SecretsConfig{})
	assert.NoError(t, err)
	assert.Nil(t, r)

	_, err = NewResolverFromConfig(context.Background(), config.SecretsConfig{Provider: "gcp"})
	assert.ErrorContains(t, err, "unsupported provider")

	_, err = NewResolverFromConfig(context.Background(), config.SecretsConfig{Provider: "vault", VaultAddress: "http://vault:8200"})
	assert.ErrorContains(t, err, "VAULT_TOKEN")

	_, err = NewResolverFromConfig(context.Background(), config.SecretsConfig{Provider: "file", FileBasePath: filepath.Join(t.TempDir(), "absent")})
	assert.Error(t, err)

	r, err = NewResolverFromConfig(context.Background(), config.SecretsConfig{Provider: "FILE", FileBasePath: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "file", r.provider.Name())
}

func TestNewAWSProvider_RequiresRegion(t *testing.T) {
	_, err := NewAWSProvider(context.Background(), "", "")
	assert.Error(t, err)
}

func TestNewVaultProvider(t *testing.T) {
	_, err := NewVaultProvider("", "token", "")
	assert.Error(t, err)

	p, err := NewVaultProvider("http://127.0.0.1:8200", "token", "/kv/")
	require.NoError(t, err)
	assert.Equal(t, "vault", p.Name())
}

func TestFileProvider(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "apis", "..data"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "apis", "completion"), []byte("sk-file\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(base, "apis", "ocr"), []byte("  ocr-file "), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(base, "dsn"), []byte("https://key@sentry.example/1"), 0o600))

	p, err := NewFileProvider(base)
	require.NoError(t, err)

	data, err := p.Fetch(context.Background(), "apis")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"completion": "sk-file", "ocr": "ocr-file"}, data)

	data, err = p.Fetch(context.Background(), "dsn")
	require.NoError(t, err)
	assert.Equal(t, "https://key@sentry.example/1", data["value"])

	_, err = p.Fetch(context.Background(), "missing")
	assert.Error(t, err)

	// paths cannot climb out of the mount
	_, err = p.Fetch(context.Background(), "../../etc/passwd")
	assert.Error(t, err)
}

func TestNewFileProvider_RejectsFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o600))

	_, err := NewFileProvider(f)
	assert.ErrorContains(t, err, "not a directory")
}

type stubSecretsManager struct {
	out *secretsmanager.GetSecretValueOutput
	err error
	id  string
}

func (s *stubSecretsManager) GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	s.id = aws.ToString(in.SecretId)
	return s.out, s.err
}

func TestAWSProvider_Fetch(t *testing.T) {
	stub := &stubSecretsManager{out: &secretsmanager.GetSecretValueOutput{
		SecretString: aws.String(`{"api_key":"sk-aws","port":5432}`),
	}}
	p := &AWSProvider{client: stub}

	data, err := p.Fetch(context.Background(), "crediscore/prod")
	require.NoError(t, err)
	assert.Equal(t, "crediscore/prod", stub.id)
	assert.Equal(t, "sk-aws", data["api_key"])
	assert.Equal(t, "5432", data["port"])

	stub.out = &secretsmanager.GetSecretValueOutput{SecretString: aws.String("plain-token")}
	data, err = p.Fetch(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"value": "plain-token"}, data)

	stub.out = &secretsmanager.GetSecretValueOutput{SecretBinary: []byte{1, 2}}
	_, err = p.Fetch(context.Background(), "binary")
	assert.ErrorContains(t, err, "no string value")

	stub.err = errors.New("AccessDeniedException")
	_, err = p.Fetch(context.Background(), "denied")
	assert.Error(t, err)
}
