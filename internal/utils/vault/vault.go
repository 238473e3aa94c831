// Package vault reads signing keys from a HashiCorp Vault KV v2 mount using
// Kubernetes service-account authentication.
package vault

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

const defaultTokenPath = "/var/run/secrets/kubernetes.io/serviceaccount/token"

type Option func(*VaultClient)

// WithTokenPath overrides where the service-account JWT is read from.
func WithTokenPath(path string) Option {
	return func(vc *VaultClient) { vc.tokenPath = path }
}

// WithToken skips the Kubernetes login and uses a ready Vault token.
func WithToken(token string) Option {
	return func(vc *VaultClient) { vc.token = token }
}

type VaultClient struct {
	client       *resty.Client
	kvSecretPath string
	role         string
	tokenPath    string
	token        string
}

type vaultErrors struct {
	Errors []string `json:"errors"`
}

type loginResponse struct {
	vaultErrors
	Auth *struct {
		ClientToken string `json:"client_token"`
	} `json:"auth"`
}

type kvResponse struct {
	vaultErrors
	Data *struct {
		Data map[string]interface{} `json:"data"`
	} `json:"data"`
}

type decryptResponse struct {
	vaultErrors
	Data *struct {
		Plaintext string `json:"plaintext"`
	} `json:"data"`
}

func New(addr, kvSecretPath, role string, opts ...Option) (*VaultClient, error) {
	vc := &VaultClient{
		client:       resty.New().SetBaseURL(addr),
		role:         role,
		kvSecretPath: kvSecretPath,
		tokenPath:    defaultTokenPath,
	}
	for _, opt := range opts {
		opt(vc)
	}

	if vc.token == "" {
		token, err := vc.login()
		if err != nil {
			return nil, err
		}
		vc.token = token
	}
	return vc, nil
}

func (vc *VaultClient) login() (string, error) {
	jwt, err := os.ReadFile(vc.tokenPath)
	if err != nil {
		return "", errors.Wrap(err, "failed to read service account token")
	}

	var result loginResponse
	resp, err := vc.client.R().
		SetBody(map[string]string{
			"jwt":  string(jwt),
			"role": vc.role,
		}).
		SetResult(&result).
		SetError(&result).
		Post("/v1/auth/kubernetes/login")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("vault authentication failed with status %d: %v", resp.StatusCode(), result.Errors)
	}
	if result.Auth == nil || result.Auth.ClientToken == "" {
		return "", errors.New("vault returned empty client_token")
	}
	return result.Auth.ClientToken, nil
}

// GetKV reads one key of the configured KV v2 secret.
func (vc *VaultClient) GetKV(secretKey string) (string, error) {
	var result kvResponse
	resp, err := vc.client.R().
		SetHeader("X-Vault-Token", vc.token).
		SetResult(&result).
		SetError(&result).
		Get("/v1/" + vc.kvSecretPath)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("vault KV get failed with status %d: %v", resp.StatusCode(), result.Errors)
	}
	if result.Data == nil || result.Data.Data == nil {
		return "", errors.New("vault response missing nested 'data' field")
	}

	value, ok := result.Data.Data[secretKey]
	if !ok {
		return "", fmt.Errorf("secret key '%s' not found", secretKey)
	}
	secret, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("secret value for key '%s' is not a string", secretKey)
	}
	return secret, nil
}

// DecryptData decrypts a transit-engine ciphertext.
func (vc *VaultClient) DecryptData(transitKey, ciphertext string) (string, error) {
	var result decryptResponse
	resp, err := vc.client.R().
		SetHeader("X-Vault-Token", vc.token).
		SetBody(map[string]string{"ciphertext": ciphertext}).
		SetResult(&result).
		SetError(&result).
		Post("/v1/transit/decrypt/" + transitKey)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("vault decrypt failed with status %d: %v", resp.StatusCode(), result.Errors)
	}
	if result.Data == nil {
		return "", errors.New("vault response missing 'data' field")
	}

	plaintext, err := base64.StdEncoding.DecodeString(result.Data.Plaintext)
	if err != nil {
		return "", errors.Wrap(err, "failed to decode base64 plaintext")
	}
	return string(plaintext), nil
}
