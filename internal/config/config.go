package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// SepoliaChainID is the default target network.
const SepoliaChainID = 11155111

// Config holds configuration values loaded from flags, env, or config file.
// Adapter constructors receive these values explicitly; nothing is baked
// into the adapter packages.
type Config struct {
	RPCURL          string
	FallbackRPCURL  string
	ContractAddress string
	ChainID         uint64
	SubgraphURL     string
	KeystorePath    string
	Passphrase      string
	PrivateKey      string
	ShelterAddress  string
	MaxRetries      int
	RetryBackoff    time.Duration
	ConfirmInterval time.Duration
	LogLevel        string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PETADOPT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("chain-id", uint64(SepoliaChainID))
	v.SetDefault("max-retries", 2)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("confirm-interval", 2*time.Second)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RPCURL:          v.GetString("rpc"),
		FallbackRPCURL:  v.GetString("fallback-rpc"),
		ContractAddress: v.GetString("contract"),
		ChainID:         v.GetUint64("chain-id"),
		SubgraphURL:     v.GetString("subgraph"),
		KeystorePath:    v.GetString("keystore"),
		Passphrase:      v.GetString("passphrase"),
		PrivateKey:      v.GetString("private-key"),
		ShelterAddress:  v.GetString("shelter"),
		MaxRetries:      v.GetInt("max-retries"),
		RetryBackoff:    v.GetDuration("retry-backoff"),
		ConfirmInterval: v.GetDuration("confirm-interval"),
		LogLevel:        v.GetString("log-level"),
	}

	return cfg, nil
}

// Contract parses and validates the configured contract address.
func (c Config) Contract() (common.Address, error) {
	return ParseAddress(c.ContractAddress)
}

// ParseAddress validates a hex address string.
func ParseAddress(input string) (common.Address, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return common.Address{}, fmt.Errorf("address is required")
	}
	if !common.IsHexAddress(trimmed) {
		return common.Address{}, fmt.Errorf("invalid address: %s", trimmed)
	}
	return common.HexToAddress(trimmed), nil
}
