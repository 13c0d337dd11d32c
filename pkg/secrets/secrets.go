package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/richxcame/crediscore/pkg/config"
	"github.com/richxcame/crediscore/pkg/logger"
	"go.uber.org/zap"
)

// Scheme prefixes a setting whose value lives in the secret store,
// e.g. secret://crediscore/completion#api_key
const Scheme = "secret://"

var (
	// ErrInvalidRef is returned for a malformed secret reference
	ErrInvalidRef = errors.New("secrets: invalid reference")
	// ErrKeyNotFound is returned when the secret has no such key
	ErrKeyNotFound = errors.New("secrets: key not found")
)

// Provider fetches every key stored under a path
type Provider interface {
	Name() string
	Fetch(ctx context.Context, path string) (map[string]string, error)
}

// Ref points at one value inside a stored secret
type Ref struct {
	Path string
	Key  string
}

// IsRef reports whether a setting value is a secret reference
func IsRef(value string) bool {
	return strings.HasPrefix(strings.TrimSpace(value), Scheme)
}

// ParseRef parses secret://path#key. A missing key selects "value".
func ParseRef(raw string) (Ref, error) {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, Scheme) {
		return Ref{}, fmt.Errorf("%w: %q lacks %s", ErrInvalidRef, raw, Scheme)
	}
	s = strings.TrimPrefix(s, Scheme)

	ref := Ref{Key: "value"}
	if i := strings.LastIndex(s, "#"); i >= 0 {
		ref.Key = strings.TrimSpace(s[i+1:])
		s = s[:i]
	}
	ref.Path = strings.Trim(strings.TrimSpace(s), "/")

	if ref.Path == "" || ref.Key == "" {
		return Ref{}, fmt.Errorf("%w: %q", ErrInvalidRef, raw)
	}
	return ref, nil
}

type cacheEntry struct {
	data      map[string]string
	expiresAt time.Time
}

// Resolver looks up references through a provider, caching whole secrets by path
type Resolver struct {
	provider Provider
	ttl      time.Duration
	now      func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewResolver wraps a provider. A non-positive ttl disables caching.
func NewResolver(provider Provider, ttl time.Duration) *Resolver {
	return &Resolver{
		provider: provider,
		ttl:      ttl,
		now:      time.Now,
		cache:    make(map[string]cacheEntry),
	}
}

// NewResolverFromConfig builds the provider named in cfg.
// It returns nil, nil when no provider is configured.
func NewResolverFromConfig(ctx context.Context, cfg config.SecretsConfig) (*Resolver, error) {
	var (
		provider Provider
		err      error
	)

	switch strings.ToLower(cfg.Provider) {
	case "":
		return nil, nil
	case "aws":
		provider, err = NewAWSProvider(ctx, cfg.AWSRegion, cfg.AWSEndpoint)
	case "vault":
		provider, err = NewVaultProvider(cfg.VaultAddress, cfg.VaultToken, cfg.VaultMount)
	case "file":
		provider, err = NewFileProvider(cfg.FileBasePath)
	default:
		err = fmt.Errorf("secrets: unsupported provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return NewResolver(provider, cfg.CacheTTL), nil
}

// Resolve returns the value a reference points at
func (r *Resolver) Resolve(ctx context.Context, raw string) (string, error) {
	ref, err := ParseRef(raw)
	if err != nil {
		return "", err
	}

	data, err := r.fetch(ctx, ref.Path)
	if err != nil {
		return "", err
	}

	value, ok := data[ref.Key]
	if !ok || value == "" {
		return "", fmt.Errorf("%w: %s#%s", ErrKeyNotFound, ref.Path, ref.Key)
	}
	return value, nil
}

func (r *Resolver) fetch(ctx context.Context, path string) (map[string]string, error) {
	r.mu.Lock()
	entry, ok := r.cache[path]
	r.mu.Unlock()
	if ok && r.now().Before(entry.expiresAt) {
		return entry.data, nil
	}

	data, err := r.provider.Fetch(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("secrets: %s fetch of %s failed: %w", r.provider.Name(), path, err)
	}

	if r.ttl > 0 {
		r.mu.Lock()
		r.cache[path] = cacheEntry{data: data, expiresAt: r.now().Add(r.ttl)}
		r.mu.Unlock()
	}
	return data, nil
}

// Apply replaces every secret reference among the credential settings of cfg
// with its resolved value.
func Apply(ctx context.Context, r *Resolver, cfg *config.Config) error {
	fields := map[string]*string{
		"DB_PASSWORD":        &cfg.Database.Password,
		"REDIS_PASSWORD":     &cfg.Redis.Password,
		"OCR_API_KEY":        &cfg.OCR.APIKey,
		"COMPLETION_API_KEY": &cfg.Completion.APIKey,
		"STORAGE_ACCESS_KEY": &cfg.Storage.AccessKey,
		"STORAGE_SECRET_KEY": &cfg.Storage.SecretKey,
		"SENTRY_DSN":         &cfg.Sentry.DSN,
	}

	for name, field := range fields {
		if !IsRef(*field) {
			continue
		}
		if r == nil {
			return fmt.Errorf("secrets: %s is a secret reference but SECRETS_PROVIDER is not set", name)
		}

		value, err := r.Resolve(ctx, *field)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", name, err)
		}
		*field = value
		logger.Info("resolved secret setting",
			zap.String("setting", name),
			zap.String("provider", r.provider.Name()),
		)
	}
	return nil
}
