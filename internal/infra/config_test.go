package infra

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validConfig = `
app:
  name: nftmarket
admin:
  address: "admin"
  fee_recipient: "treasury"
market:
  platform_fee_bps: 30
  max_royalty_bps: 1000
  escrow_account: "escrow.market"
auction:
  platform_fee_bps: 30
  min_bid_increment: "1"
  escrow_account: "escrow.auction"
factory:
  deploy_fee: "10000000000000000"
  mint_fee: "1000000000000000"
  fee_token: "pay.native"
tokens:
  - address: "pay.native"
    name: "Wrapped Native"
    symbol: "WNAT"
    decimals: 18
logging:
  level: debug
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Admin.Address != "admin" {
		t.Errorf("admin = %s, want admin", cfg.Admin.Address)
	}
	if cfg.Market.PlatformFeeBps != 30 {
		t.Errorf("fee = %d, want 30", cfg.Market.PlatformFeeBps)
	}
	if len(cfg.Tokens) != 1 || cfg.Tokens[0].Decimals != 18 {
		t.Errorf("tokens = %+v", cfg.Tokens)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %s, want debug", cfg.Logging.Level)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("NFTMARKET_ADMIN", "env.admin")
	t.Setenv("NFTMARKET_DB_PATH", "/tmp/env.db")

	cfg, err := LoadConfig(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Admin.Address != "env.admin" {
		t.Errorf("admin = %s, want env.admin", cfg.Admin.Address)
	}
	if cfg.Storage.Path != "/tmp/env.db" {
		t.Errorf("db path = %s, want /tmp/env.db", cfg.Storage.Path)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		wantErr string
	}{
		{
			"missing admin",
			func(c string) string { return strings.Replace(c, `address: "admin"`, `address: ""`, 1) },
			"admin address",
		},
		{
			"fee above denominator",
			func(c string) string { return strings.Replace(c, "platform_fee_bps: 30", "platform_fee_bps: 10001", 1) },
			"platform fee",
		},
		{
			"bad amount",
			func(c string) string { return strings.Replace(c, `min_bid_increment: "1"`, `min_bid_increment: "x"`, 1) },
			"min_bid_increment",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.mutate(validConfig)))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	v, err := ParseAmount("1000000000000000000000000")
	if err != nil {
		t.Fatalf("ParseAmount failed: %v", err)
	}
	if v.String() != "1000000000000000000000000" {
		t.Errorf("got %s", v)
	}

	if v, err := ParseAmount(""); err != nil || v.Sign() != 0 {
		t.Errorf("empty: got %s, %v", v, err)
	}
	for _, bad := range []string{"-5", "1.5", "abc"} {
		if _, err := ParseAmount(bad); err == nil {
			t.Errorf("ParseAmount(%q) should fail", bad)
		}
	}
}
