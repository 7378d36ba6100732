package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"petadopt/internal/config"
)

// seedPetIDs is the fixed pet list the project seeds on a fresh contract.
var seedPetIDs = []string{"7429", "3856", "9182", "5673", "2947", "8314"}

// defaultShelter is the APUshelter testnet address.
const defaultShelter = "0xD1B2A0692031082D16916454CFAbaae94E2Ee366"

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Assign the shelter for the fixed pet list (admin only)",
		RunE:  runSeed,
	}
	addChainFlags(cmd)
	addSignerFlags(cmd)
	cmd.Flags().String("shelter", defaultShelter, "shelter address to assign")
	cmd.Flags().StringSlice("pets", nil, "pet ids to seed (defaults to the fixed list)")
	return cmd
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	shelterFlag, _ := cmd.Flags().GetString("shelter")
	if cfg.ShelterAddress != "" {
		shelterFlag = cfg.ShelterAddress
	}
	shelter, err := config.ParseAddress(shelterFlag)
	if err != nil {
		return err
	}

	pets, _ := cmd.Flags().GetStringSlice("pets")
	if len(pets) == 0 {
		pets = seedPetIDs
	}

	ctx, stop := signalContext()
	defer stop()

	session, writer, err := openWriter(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer session.Disconnect()

	for _, petID := range pets {
		result, err := writer.SetShelter(ctx, session, petID, shelter)
		if err != nil {
			return fmt.Errorf("seed pet %s: %w", petID, err)
		}
		fmt.Printf("setPetShelter %s -> %s tx %s block %d\n",
			petID, shelter.Hex(), result.Hash, result.BlockNumber)
	}
	fmt.Println("seed done.")
	return nil
}

func newDeployCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the adoption contract from a compiled bytecode file",
		RunE:  runDeploy,
	}
	addChainFlags(cmd)
	addSignerFlags(cmd)
	cmd.Flags().String("bytecode", "", "path to the hex-encoded contract bytecode")
	return cmd
}

func runDeploy(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	path, _ := cmd.Flags().GetString("bytecode")
	if path == "" {
		return fmt.Errorf("bytecode path is required")
	}
	bytecode, err := readBytecode(path)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	session, writer, err := openDeployWriter(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer session.Disconnect()

	address, result, err := writer.Deploy(ctx, session, bytecode)
	if err != nil {
		return err
	}
	fmt.Printf("deployed: %s (tx %s, block %d)\n", address.Hex(), result.Hash, result.BlockNumber)
	return nil
}

func readBytecode(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bytecode: %w", err)
	}
	text := strings.TrimSpace(string(raw))
	text = strings.TrimPrefix(text, "0x")
	bytecode, err := hex.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("decode bytecode hex: %w", err)
	}
	return bytecode, nil
}
