package secrets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	vault "github.com/hashicorp/vault/api"
)

// VaultProvider reads KV v2 secrets from HashiCorp Vault
type VaultProvider struct {
	kv *vault.KVv2
}

// NewVaultProvider creates a Vault provider for the given KV v2 mount
func NewVaultProvider(address, token, mount string) (*VaultProvider, error) {
	if address == "" || token == "" {
		return nil, fmt.Errorf("secrets: vault provider requires VAULT_ADDR and VAULT_TOKEN")
	}
	if mount = strings.Trim(mount, "/"); mount == "" {
		mount = "secret"
	}

	vcfg := vault.DefaultConfig()
	vcfg.Address = address
	client, err := vault.NewClient(vcfg)
	if err != nil {
		return nil, fmt.Errorf("secrets: failed to create vault client: %w", err)
	}
	client.SetToken(token)

	return &VaultProvider{kv: client.KVv2(mount)}, nil
}

// Name implements Provider
func (p *VaultProvider) Name() string { return "vault" }

// Fetch implements Provider
func (p *VaultProvider) Fetch(ctx context.Context, path string) (map[string]string, error) {
	secret, err := p.kv.Get(ctx, path)
	if err != nil {
		var respErr *vault.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("vault path %s not found", path)
		}
		return nil, err
	}

	data := make(map[string]string, len(secret.Data))
	for k, v := range secret.Data {
		data[k] = fmt.Sprint(v)
	}
	return data, nil
}
