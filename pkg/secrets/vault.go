package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/vacationrentals/pkg/retry"
)

// VaultConfig locates a Vault KV secret whose keys are exported as
// environment variables (DB_PASSWORD, OPENAI_API_KEY, SMTP_PASS, ...).
type VaultConfig struct {
	Enabled   bool
	Addr      string
	Token     string
	Namespace string
	Mount     string
	Path      string
	KVVersion int
	Timeout   time.Duration
	// Overwrite replaces variables that are already set
	Overwrite bool
}

// Result reports how many keys were exported
type Result struct {
	Loaded  int
	Skipped int
}

// ConfigFromEnv reads the VAULT_* variables
func ConfigFromEnv() VaultConfig {
	cfg := VaultConfig{
		Enabled:   strings.EqualFold(os.Getenv("VAULT_ENABLED"), "true"),
		Addr:      os.Getenv("VAULT_ADDR"),
		Token:     os.Getenv("VAULT_TOKEN"),
		Namespace: os.Getenv("VAULT_NAMESPACE"),
		Mount:     "secret",
		Path:      os.Getenv("VAULT_PATH"),
		KVVersion: 2,
		Timeout:   5 * time.Second,
		Overwrite: strings.EqualFold(os.Getenv("VAULT_OVERWRITE"), "true"),
	}
	if mount := os.Getenv("VAULT_MOUNT"); mount != "" {
		cfg.Mount = mount
	}
	if v, err := strconv.Atoi(os.Getenv("VAULT_KV_VERSION")); err == nil {
		cfg.KVVersion = v
	}
	if ms, err := strconv.Atoi(os.Getenv("VAULT_TIMEOUT_MS")); err == nil && ms > 0 {
		cfg.Timeout = time.Duration(ms) * time.Millisecond
	}
	return cfg
}

// Apply fetches the secret and exports its keys. A disabled config is a no-op.
func Apply(ctx context.Context, cfg VaultConfig) (Result, error) {
	if !cfg.Enabled {
		return Result{}, nil
	}
	if cfg.Addr == "" || cfg.Token == "" || cfg.Path == "" {
		return Result{}, errors.New("vault configuration incomplete (VAULT_ADDR, VAULT_TOKEN, VAULT_PATH)")
	}

	url, err := cfg.secretURL()
	if err != nil {
		return Result{}, err
	}

	client := &http.Client{Timeout: cfg.Timeout}
	var body []byte
	err = retry.DoWithLog(ctx, retry.Config{
		MaxAttempts:   3,
		InitialDelay:  200 * time.Millisecond,
		MaxDelay:      time.Second,
		BackoffFactor: 2,
	}, "Vault", func() error {
		body, err = fetch(ctx, client, url, cfg)
		return err
	}, func(attempt int, err error, nextDelay time.Duration) {
		log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", nextDelay).Msg("Vault fetch failed")
	})
	if err != nil {
		return Result{}, err
	}

	data, err := decodeSecret(body, cfg.KVVersion)
	if err != nil {
		return Result{}, err
	}

	var result Result
	for key, value := range data {
		if !cfg.Overwrite && os.Getenv(key) != "" {
			result.Skipped++
			continue
		}
		if err := os.Setenv(key, envValue(value)); err != nil {
			return result, fmt.Errorf("exporting %s: %w", key, err)
		}
		result.Loaded++
	}

	log.Info().Str("path", cfg.Path).Int("loaded", result.Loaded).Int("skipped", result.Skipped).Msg("Secrets loaded from Vault")
	return result, nil
}

func fetch(ctx context.Context, client *http.Client, url string, cfg VaultConfig) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, retry.Permanent(err)
	}
	req.Header.Set("X-Vault-Token", cfg.Token)
	if cfg.Namespace != "" {
		req.Header.Set("X-Vault-Namespace", cfg.Namespace)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("vault returned %s", resp.Status)
	case resp.StatusCode >= 300:
		// auth and missing-path errors will not fix themselves
		return nil, retry.Permanent(fmt.Errorf("vault returned %s: %s", resp.Status, strings.TrimSpace(string(body))))
	}
	return body, nil
}

func (c VaultConfig) secretURL() (string, error) {
	addr := strings.TrimRight(c.Addr, "/")
	mount := strings.Trim(c.Mount, "/")
	path := strings.TrimLeft(c.Path, "/")
	if addr == "" || mount == "" || path == "" {
		return "", errors.New("vault address, mount and path must be set")
	}
	if c.KVVersion == 1 {
		return fmt.Sprintf("%s/v1/%s/%s", addr, mount, path), nil
	}
	return fmt.Sprintf("%s/v1/%s/data/%s", addr, mount, path), nil
}

// kvResponse covers both engines: v1 puts the keys in data, v2 in data.data
type kvResponse struct {
	Data map[string]interface{} `json:"data"`
}

func decodeSecret(body []byte, kvVersion int) (map[string]interface{}, error) {
	var resp kvResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding vault response: %w", err)
	}
	if resp.Data == nil {
		return nil, errors.New("vault response has no data")
	}
	if kvVersion == 1 {
		return resp.Data, nil
	}
	inner, ok := resp.Data["data"].(map[string]interface{})
	if !ok {
		return nil, errors.New("vault response has no data for KV v2")
	}
	return inner, nil
}

func envValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	}
}
