package config

import (
	"fmt"
	"math/big"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"
)

// Config is the deployable parameter set for the safety module: the
// governance addresses, the reward distributor variants, and the auction and
// cooldown policy. Amount fields are decimal strings interpreted as
// 1e18-scaled integers.
type Config struct {
	Governor      string `toml:"Governor"`
	ModuleAddress string `toml:"ModuleAddress"`
	AuctionEscrow string `toml:"AuctionEscrow"`
	PaymentToken  string `toml:"PaymentToken"`

	CooldownSeconds uint64 `toml:"CooldownSeconds"`
	UnstakeWindow   uint64 `toml:"UnstakeWindow"`

	Staking StakingConfig `toml:"Staking"`
	Perp    PerpConfig    `toml:"Perp"`
	Auction AuctionConfig `toml:"Auction"`
}

// StakingConfig holds the multiplier curve of the staking distributor.
type StakingConfig struct {
	MaxMultiplier  string `toml:"MaxMultiplier"`
	SmoothingValue string `toml:"SmoothingValue"`
}

// PerpConfig holds the early withdrawal policy of the perpetual LP
// distributor.
type PerpConfig struct {
	EarlyWithdrawalThreshold uint64 `toml:"EarlyWithdrawalThreshold"`
}

// AuctionConfig holds the default lot parameters used when governance does
// not override them per slashing event.
type AuctionConfig struct {
	LotPrice             string `toml:"LotPrice"`
	InitialLotSize       string `toml:"InitialLotSize"`
	NumLots              uint64 `toml:"NumLots"`
	LotIncreaseIncrement string `toml:"LotIncreaseIncrement"`
	LotIncreasePeriod    uint64 `toml:"LotIncreasePeriod"`
	TimeLimit            uint64 `toml:"TimeLimit"`
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks addresses and numeric fields without constructing any
// engine.
func (c *Config) Validate() error {
	for name, raw := range map[string]string{
		"Governor":      c.Governor,
		"ModuleAddress": c.ModuleAddress,
		"AuctionEscrow": c.AuctionEscrow,
		"PaymentToken":  c.PaymentToken,
	} {
		if _, err := parseAddress(raw); err != nil {
			return fmt.Errorf("config: %s: %w", name, err)
		}
	}
	if c.CooldownSeconds == 0 {
		return fmt.Errorf("config: CooldownSeconds must be positive")
	}
	if _, err := parseAmount(c.Staking.MaxMultiplier); err != nil {
		return fmt.Errorf("config: Staking.MaxMultiplier: %w", err)
	}
	if _, err := parseAmount(c.Staking.SmoothingValue); err != nil {
		return fmt.Errorf("config: Staking.SmoothingValue: %w", err)
	}
	if c.Perp.EarlyWithdrawalThreshold == 0 {
		return fmt.Errorf("config: Perp.EarlyWithdrawalThreshold must be positive")
	}
	if _, err := parseAmount(c.Auction.LotPrice); err != nil {
		return fmt.Errorf("config: Auction.LotPrice: %w", err)
	}
	if _, err := parseAmount(c.Auction.InitialLotSize); err != nil {
		return fmt.Errorf("config: Auction.InitialLotSize: %w", err)
	}
	if _, err := parseAmount(c.Auction.LotIncreaseIncrement); err != nil {
		return fmt.Errorf("config: Auction.LotIncreaseIncrement: %w", err)
	}
	if c.Auction.NumLots == 0 || c.Auction.LotIncreasePeriod == 0 || c.Auction.TimeLimit == 0 {
		return fmt.Errorf("config: auction lot parameters must be positive")
	}
	return nil
}

// GovernorAddress returns the parsed governor address.
func (c *Config) GovernorAddress() common.Address {
	addr, _ := parseAddress(c.Governor)
	return addr
}

// Module returns the parsed module address.
func (c *Config) Module() common.Address {
	addr, _ := parseAddress(c.ModuleAddress)
	return addr
}

// Escrow returns the parsed auction escrow address.
func (c *Config) Escrow() common.Address {
	addr, _ := parseAddress(c.AuctionEscrow)
	return addr
}

// Payment returns the parsed payment token address.
func (c *Config) Payment() common.Address {
	addr, _ := parseAddress(c.PaymentToken)
	return addr
}

// MultiplierBounds returns the parsed staking multiplier parameters.
func (c *Config) MultiplierBounds() (maxMultiplier, smoothing *big.Int) {
	maxMultiplier, _ = parseAmount(c.Staking.MaxMultiplier)
	smoothing, _ = parseAmount(c.Staking.SmoothingValue)
	return maxMultiplier, smoothing
}

func parseAddress(raw string) (common.Address, error) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("invalid address %q", raw)
	}
	addr := common.HexToAddress(raw)
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("zero address")
	}
	return addr, nil
}

func parseAmount(raw string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", raw)
	}
	if v.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	return v, nil
}
