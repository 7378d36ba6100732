package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"petadopt/internal/config"
	"petadopt/internal/units"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [petId...]",
		Short: "Print the on-chain record of each pet",
		RunE:  runStatus,
	}
	addChainFlags(cmd)
	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signalContext()
	defer stop()

	client, reader, err := openReader(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	petIDs := args
	if len(petIDs) == 0 {
		petIDs = seedPetIDs
	}

	owner, err := reader.Owner(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("contract: %s (owner %s)\n", reader.Contract().Hex(), owner.Hex())

	for _, petID := range petIDs {
		info, err := reader.PetInfo(ctx, petID)
		if err != nil {
			return fmt.Errorf("pet %s: %w", petID, err)
		}
		fmt.Printf("pet %-6s balance=%s ETH adopter=%s shelter=%s active=%t adoptable=%t\n",
			info.PetID,
			units.FormatEther(info.Balance),
			info.Adopter.Hex(),
			info.Shelter.Hex(),
			info.Active,
			info.Adoptable(),
		)
	}
	return nil
}

func newBalanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance <address>",
		Short: "Print the native-currency balance of an address",
		Args:  cobra.ExactArgs(1),
		RunE:  runBalance,
	}
	addChainFlags(cmd)
	return cmd
}

func runBalance(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	address, err := config.ParseAddress(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	client, reader, err := openReader(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	balance, err := reader.Balance(ctx, address)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s ETH\n", address.Hex(), units.FormatEther(balance))
	return nil
}
