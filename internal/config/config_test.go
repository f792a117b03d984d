package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BitbucketAPIURL != "https://bitbucket.org/api/2.0/" {
		t.Fatalf("api url = %q", cfg.BitbucketAPIURL)
	}
	if cfg.BitbucketPageLen != 25 {
		t.Fatalf("page len = %d", cfg.BitbucketPageLen)
	}
	if cfg.BitbucketTimeout != 5*time.Second {
		t.Fatalf("timeout = %v", cfg.BitbucketTimeout)
	}
	if cfg.HarvestInterval != 15*time.Minute {
		t.Fatalf("interval = %v", cfg.HarvestInterval)
	}
	if cfg.BitbucketCredentialSource != CredentialSourceEnv {
		t.Fatalf("credential source = %q", cfg.BitbucketCredentialSource)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("BITBUCKET_USERNAME", "alice")
	t.Setenv("BITBUCKET_PASSWORD", "s3cret")
	t.Setenv("BITBUCKET_PAGE_LEN", "50")
	t.Setenv("HARVEST_INTERVAL", "60")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BitbucketUsername != "alice" || cfg.BitbucketPassword != "s3cret" {
		t.Fatalf("credentials not loaded: %q", cfg.BitbucketUsername)
	}
	if cfg.BitbucketPageLen != 50 {
		t.Fatalf("page len = %d", cfg.BitbucketPageLen)
	}
	if cfg.HarvestInterval != time.Minute {
		t.Fatalf("interval = %v", cfg.HarvestInterval)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"HARVEST_INTERVAL":            "0",
		"BITBUCKET_TIMEOUT_SECONDS":   "-1",
		"BITBUCKET_CREDENTIAL_SOURCE": "vault",
		"STORAGE_TTL_SECONDS":         "0",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, val)
			}
		})
	}
}

func TestLogFieldsHidePassword(t *testing.T) {
	cfg := &Config{BitbucketUsername: "alice", BitbucketPassword: "s3cret"}
	fields := cfg.LogFields()
	for k, v := range fields {
		if s, ok := v.(string); ok && s == "s3cret" {
			t.Fatalf("password leaked under %q", k)
		}
	}
	if fields["bitbucket_password_set"] != true {
		t.Fatalf("expected password presence flag, got %#v", fields["bitbucket_password_set"])
	}
}
