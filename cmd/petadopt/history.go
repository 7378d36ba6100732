package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"petadopt/internal/model"
	"petadopt/internal/storage"
	"petadopt/internal/storage/postgres"
	"petadopt/internal/units"
)

func newForwardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forwards",
		Short: "List recent fund forwards from the subgraph",
		RunE:  runForwards,
	}
	addSubgraphFlags(cmd)
	cmd.Flags().Int("limit", 10, "number of records to fetch")
	return cmd
}

func runForwards(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	client, err := openSubgraph(cfg, logger)
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")

	ctx, stop := signalContext()
	defer stop()

	forwards, err := client.RecentForwards(ctx, limit)
	if err != nil {
		return err
	}
	printForwards(forwards)
	return nil
}

func newSheltersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shelters",
		Short: "List shelters aggregated over the recent forwarding window",
		RunE:  runShelters,
	}
	addSubgraphFlags(cmd)
	cmd.Flags().Int("limit", 50, "size of the forwarding window to aggregate")
	return cmd
}

func runShelters(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	client, err := openSubgraph(cfg, logger)
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")

	ctx, stop := signalContext()
	defer stop()

	groups, err := client.UniqueShelters(ctx, limit)
	if err != nil {
		return err
	}
	for _, group := range groups {
		fmt.Printf("%s total=%s ETH txs=%d last=%d\n",
			group.Shelter,
			units.FormatEther(group.TotalAmount),
			group.TxCount,
			group.LastActivity,
		)
	}
	return nil
}

func newActivityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activity <shelter>",
		Short: "Show recent forwards and adoptions for one shelter",
		Args:  cobra.ExactArgs(1),
		RunE:  runActivity,
	}
	addSubgraphFlags(cmd)
	return cmd
}

func runActivity(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	client, err := openSubgraph(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	activity, err := client.ShelterActivity(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("forwards (%d):\n", len(activity.Forwards))
	printForwards(activity.Forwards)
	fmt.Printf("adoptions (%d):\n", len(activity.Adoptions))
	printAdoptions(activity.Adoptions)
	return nil
}

func newAdoptionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "adoptions <adopter>",
		Short: "Show adoption history for one adopter",
		Args:  cobra.ExactArgs(1),
		RunE:  runAdoptions,
	}
	addSubgraphFlags(cmd)
	return cmd
}

func runAdoptions(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	client, err := openSubgraph(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	adoptions, err := client.AdopterHistory(ctx, args[0])
	if err != nil {
		return err
	}
	printAdoptions(adoptions)
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Archive recent subgraph history to JSONL or Postgres",
		RunE:  runExport,
	}
	addSubgraphFlags(cmd)
	cmd.Flags().Int("limit", 100, "number of records to fetch per kind")
	cmd.Flags().String("out", "", "output JSONL path for forwarding records")
	cmd.Flags().String("adoptions-out", "", "output JSONL path for adoption records")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN")
	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	out, _ := cmd.Flags().GetString("out")
	adoptionsOut, _ := cmd.Flags().GetString("adoptions-out")
	pgDSN, _ := cmd.Flags().GetString("pg-dsn")
	if out == "" && adoptionsOut == "" && pgDSN == "" {
		return fmt.Errorf("one of --out, --adoptions-out, or --pg-dsn is required")
	}

	client, err := openSubgraph(cfg, logger)
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")

	ctx, stop := signalContext()
	defer stop()

	forwards, err := client.RecentForwards(ctx, limit)
	if err != nil {
		return err
	}
	adoptions, err := client.RecentAdoptions(ctx, limit)
	if err != nil {
		return err
	}

	if out != "" {
		var sink storage.ForwardSink = storage.NewJsonlStorage(out)
		if err := sink.PutForwardBatch(forwards); err != nil {
			return fmt.Errorf("write forwards jsonl: %w", err)
		}
		fmt.Printf("wrote %d forwards to %s\n", len(forwards), out)
	}

	if adoptionsOut != "" {
		var sink storage.AdoptionSink = storage.NewJsonlStorage(adoptionsOut)
		if err := sink.PutAdoptionBatch(adoptions); err != nil {
			return fmt.Errorf("write adoptions jsonl: %w", err)
		}
		fmt.Printf("wrote %d adoptions to %s\n", len(adoptions), adoptionsOut)
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
		if err := store.PutAdoptionBatch(ctx, adoptions); err != nil {
			return fmt.Errorf("store adoptions: %w", err)
		}
		fmt.Printf("stored %d forwards and %d adoptions in postgres\n", len(forwards), len(adoptions))
	}
	return nil
}

func printForwards(forwards []model.ForwardRecord) {
	for _, forward := range forwards {
		fmt.Printf("  pet=%s shelter=%s amount=%s ETH ts=%s tx=%s\n",
			forward.PetID,
			forward.Shelter,
			units.FormatWeiString(forward.Amount),
			forward.BlockTimestamp,
			forward.TransactionHash,
		)
	}
}

func printAdoptions(adoptions []model.AdoptionRecord) {
	for _, adoptionRecord := range adoptions {
		fmt.Printf("  pet=%s adopter=%s shelter=%s amount=%s ETH ts=%s tx=%s\n",
			adoptionRecord.PetID,
			adoptionRecord.Adopter,
			adoptionRecord.Shelter,
			units.FormatWeiString(adoptionRecord.Amount),
			adoptionRecord.BlockTimestamp,
			adoptionRecord.TransactionHash,
		)
	}
}
