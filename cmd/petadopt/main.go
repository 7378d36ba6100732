package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"petadopt/internal/adoption"
	"petadopt/internal/chain"
	"petadopt/internal/config"
	"petadopt/internal/subgraph"
	"petadopt/internal/wallet"
)

func main() {
	root := &cobra.Command{
		Use:          "petadopt",
		Short:        "Pet adoption donation client",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	root.AddCommand(
		newStatusCmd(),
		newBalanceCmd(),
		newAdoptCmd(),
		newFeedCmd(),
		newSetShelterCmd(),
		newSeedCmd(),
		newDeployCmd(),
		newForwardsCmd(),
		newSheltersCmd(),
		newActivityCmd(),
		newAdoptionsCmd(),
		newExportCmd(),
		newScanCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

// addChainFlags registers the flags every chain-touching command needs.
func addChainFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "", "Ethereum RPC URL")
	cmd.Flags().String("fallback-rpc", "", "fallback RPC URL for the target chain")
	cmd.Flags().String("contract", "", "adoption contract address")
	cmd.Flags().Uint64("chain-id", config.SepoliaChainID, "target chain id")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

// addSignerFlags registers the flags write commands need.
func addSignerFlags(cmd *cobra.Command) {
	cmd.Flags().String("keystore", "", "keystore JSON file path")
	cmd.Flags().String("passphrase", "", "keystore passphrase (prefer PETADOPT_PASSPHRASE)")
	cmd.Flags().String("private-key", "", "raw hex private key (prefer PETADOPT_PRIVATE_KEY)")
	cmd.Flags().Duration("confirm-interval", 2*time.Second, "receipt polling interval")
}

// addSubgraphFlags registers the flags history commands need.
func addSubgraphFlags(cmd *cobra.Command) {
	cmd.Flags().String("subgraph", "", "subgraph query endpoint URL")
	cmd.Flags().Int("max-retries", 2, "maximum retry attempts per query")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

// setup loads config and builds the logger; every RunE starts here.
func setup(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// openReader dials the RPC endpoint and builds a read adapter, failing
// fast when no contract is deployed at the configured address.
func openReader(ctx context.Context, cfg config.Config) (*chain.Client, *adoption.Reader, error) {
	if cfg.RPCURL == "" {
		return nil, nil, fmt.Errorf("rpc url is required")
	}
	contract, err := cfg.Contract()
	if err != nil {
		return nil, nil, err
	}

	client, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect rpc: %w", err)
	}

	reader, err := adoption.NewReader(client, contract)
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	if err := reader.RequireContract(ctx); err != nil {
		client.Close()
		return nil, nil, err
	}
	return client, reader, nil
}

// openWriter connects the wallet session and builds a write adapter over it.
func openWriter(ctx context.Context, cfg config.Config, logger *zap.Logger) (*wallet.Session, *adoption.Writer, error) {
	contract, err := cfg.Contract()
	if err != nil {
		return nil, nil, err
	}

	session := wallet.NewSession(wallet.Config{
		RPCURL:         cfg.RPCURL,
		FallbackRPCURL: cfg.FallbackRPCURL,
		ChainID:        cfg.ChainID,
		KeystorePath:   cfg.KeystorePath,
		Passphrase:     cfg.Passphrase,
		PrivateKey:     cfg.PrivateKey,
	}, logger)
	if err := session.Connect(ctx); err != nil {
		return nil, nil, fmt.Errorf("connect wallet: %w", err)
	}

	writer, err := adoption.NewWriter(adoption.WriterConfig{
		Contract:        contract,
		ChainID:         new(big.Int).SetUint64(cfg.ChainID),
		ConfirmInterval: cfg.ConfirmInterval,
	}, session.Client(), logger)
	if err != nil {
		session.Disconnect()
		return nil, nil, err
	}

	if err := writer.Reader().RequireContract(ctx); err != nil {
		session.Disconnect()
		return nil, nil, err
	}
	return session, writer, nil
}

// openDeployWriter is openWriter without the deployed-contract checks:
// deployment is the one write that happens before a contract exists.
func openDeployWriter(ctx context.Context, cfg config.Config, logger *zap.Logger) (*wallet.Session, *adoption.Writer, error) {
	session := wallet.NewSession(wallet.Config{
		RPCURL:         cfg.RPCURL,
		FallbackRPCURL: cfg.FallbackRPCURL,
		ChainID:        cfg.ChainID,
		KeystorePath:   cfg.KeystorePath,
		Passphrase:     cfg.Passphrase,
		PrivateKey:     cfg.PrivateKey,
	}, logger)
	if err := session.Connect(ctx); err != nil {
		return nil, nil, fmt.Errorf("connect wallet: %w", err)
	}

	writer, err := adoption.NewWriter(adoption.WriterConfig{
		ChainID:         new(big.Int).SetUint64(cfg.ChainID),
		ConfirmInterval: cfg.ConfirmInterval,
	}, session.Client(), logger)
	if err != nil {
		session.Disconnect()
		return nil, nil, err
	}
	return session, writer, nil
}

func openSubgraph(cfg config.Config, logger *zap.Logger) (*subgraph.Client, error) {
	if cfg.SubgraphURL == "" {
		return nil, fmt.Errorf("subgraph url is required")
	}
	return subgraph.NewClient(cfg.SubgraphURL, &subgraph.ClientOptions{
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Logger:       logger,
	})
}
