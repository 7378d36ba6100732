package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"petadopt/internal/adoption"
	"petadopt/internal/storage"
	"petadopt/internal/storage/postgres"
)

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Recover forwarding history from chain logs (subgraph fallback)",
		RunE:  runScan,
	}
	addChainFlags(cmd)
	cmd.Flags().Uint64("from", 0, "start block (inclusive)")
	cmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	cmd.Flags().Uint64("batch-size", 2000, "blocks per eth_getLogs batch")
	cmd.Flags().String("out", "", "output JSONL path")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN")
	return cmd
}

func runScan(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	from, _ := cmd.Flags().GetUint64("from")
	to, _ := cmd.Flags().GetUint64("to")
	batchSize, _ := cmd.Flags().GetUint64("batch-size")
	out, _ := cmd.Flags().GetString("out")
	pgDSN, _ := cmd.Flags().GetString("pg-dsn")

	ctx, stop := signalContext()
	defer stop()

	client, reader, err := openReader(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	scanner, err := adoption.NewScanner(client, reader.Contract(), logger)
	if err != nil {
		return err
	}

	forwards, err := scanner.ScanForwards(ctx, from, to, batchSize)
	if err != nil {
		return err
	}
	fmt.Printf("scanned %d forwarding records\n", len(forwards))

	if out != "" {
		var sink storage.ForwardSink = storage.NewJsonlStorage(out)
		if err := sink.PutForwardBatch(forwards); err != nil {
			return fmt.Errorf("write jsonl: %w", err)
		}
		fmt.Printf("wrote %d forwards to %s\n", len(forwards), out)
	}
	if pgDSN != "" {
		store, err := postgres.NewStore(ctx, pgDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()

		if err := store.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		if err := store.PutForwardBatch(ctx, forwards); err != nil {
			return fmt.Errorf("store forwards: %w", err)
		}
		fmt.Printf("stored %d forwards in postgres\n", len(forwards))
	}
	if out == "" && pgDSN == "" {
		printForwards(forwards)
	}
	return nil
}
