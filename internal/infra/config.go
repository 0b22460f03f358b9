package infra

import (
	"fmt"
	"math/big"
	"os"

	"gopkg.in/yaml.v3"

	"nftmarket_go/pkg/bps"
)

// Config holds every operational setting of the trading engine. Sensitive
// or deployment-specific values can be overridden through environment
// variables after the file is loaded.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Admin struct {
		Address      string `yaml:"address"`
		FeeRecipient string `yaml:"fee_recipient"`
	} `yaml:"admin"`

	Market struct {
		PlatformFeeBps uint64 `yaml:"platform_fee_bps"`
		MaxRoyaltyBps  uint64 `yaml:"max_royalty_bps"`
		EscrowAccount  string `yaml:"escrow_account"`
	} `yaml:"market"`

	Auction struct {
		PlatformFeeBps  uint64 `yaml:"platform_fee_bps"`
		MinBidIncrement string `yaml:"min_bid_increment"` // base units, decimal string
		EscrowAccount   string `yaml:"escrow_account"`
	} `yaml:"auction"`

	Factory struct {
		DeployFee string `yaml:"deploy_fee"` // base units, decimal string
		MintFee   string `yaml:"mint_fee"`
		FeeToken  string `yaml:"fee_token"`
	} `yaml:"factory"`

	Tokens []struct {
		Address  string `yaml:"address"`
		Name     string `yaml:"name"`
		Symbol   string `yaml:"symbol"`
		Decimals int    `yaml:"decimals"`
	} `yaml:"tokens"`

	PriceFeed struct {
		URL             string `yaml:"url"`
		PollIntervalSec int    `yaml:"poll_interval_sec"`
	} `yaml:"price_feed"`

	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`

	Feed struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"feed"`

	Media struct {
		Dir string `yaml:"dir"`
	} `yaml:"media"`

	Logging struct {
		Level string `yaml:"level"`
		Dir   string `yaml:"dir"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file, applies environment
// overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Admin.Address == "" {
		return fmt.Errorf("admin address is required")
	}
	if c.Admin.FeeRecipient == "" {
		return fmt.Errorf("fee recipient is required")
	}
	if !bps.Valid(c.Market.PlatformFeeBps) {
		return fmt.Errorf("market platform fee %d exceeds %d bps", c.Market.PlatformFeeBps, bps.MaxBps)
	}
	if !bps.Valid(c.Auction.PlatformFeeBps) {
		return fmt.Errorf("auction platform fee %d exceeds %d bps", c.Auction.PlatformFeeBps, bps.MaxBps)
	}
	if c.Market.MaxRoyaltyBps != 0 && !bps.Valid(c.Market.MaxRoyaltyBps) {
		return fmt.Errorf("max royalty %d exceeds %d bps", c.Market.MaxRoyaltyBps, bps.MaxBps)
	}
	for _, field := range []struct{ name, value string }{
		{"auction.min_bid_increment", c.Auction.MinBidIncrement},
		{"factory.deploy_fee", c.Factory.DeployFee},
		{"factory.mint_fee", c.Factory.MintFee},
	} {
		if field.value == "" {
			continue
		}
		if _, err := ParseAmount(field.value); err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
	}
	if c.PriceFeed.URL != "" && c.PriceFeed.PollIntervalSec <= 0 {
		return fmt.Errorf("price feed poll interval must be positive")
	}
	return nil
}

// ParseAmount parses a base-unit amount given as a decimal string.
func ParseAmount(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("not a valid amount: %q", s)
	}
	return v, nil
}

// overrideWithEnv applies environment variables over the file values.
func overrideWithEnv(cfg *Config) {
	if v := os.Getenv("NFTMARKET_ADMIN"); v != "" {
		cfg.Admin.Address = v
	}
	if v := os.Getenv("NFTMARKET_FEE_RECIPIENT"); v != "" {
		cfg.Admin.FeeRecipient = v
	}
	if v := os.Getenv("NFTMARKET_DB_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("NFTMARKET_FEED_ADDR"); v != "" {
		cfg.Feed.ListenAddr = v
	}
	if v := os.Getenv("NFTMARKET_PRICE_FEED_URL"); v != "" {
		cfg.PriceFeed.URL = v
	}
}
