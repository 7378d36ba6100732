package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"petadopt/internal/adoption"
	"petadopt/internal/config"
	"petadopt/internal/model"
	"petadopt/internal/units"
)

func newAdoptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "adopt <petId> <amount>",
		Short: "Adopt a pet with a donation in ETH",
		Args:  cobra.ExactArgs(2),
		RunE:  runAdopt,
	}
	addChainFlags(cmd)
	addSignerFlags(cmd)
	return cmd
}

func runAdopt(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signalContext()
	defer stop()

	session, writer, err := openWriter(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer session.Disconnect()

	return reportResult(writer.Adopt(ctx, session, args[0], args[1]))
}

func newFeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feed <petId> <amount>",
		Short: "Feed a pet with a top-up payment in ETH",
		Args:  cobra.ExactArgs(2),
		RunE:  runFeed,
	}
	addChainFlags(cmd)
	addSignerFlags(cmd)
	return cmd
}

func runFeed(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signalContext()
	defer stop()

	session, writer, err := openWriter(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer session.Disconnect()

	return reportResult(writer.Feed(ctx, session, args[0], args[1]))
}

func newSetShelterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-shelter <petId> <shelter>",
		Short: "Assign the shelter that receives a pet's funds (admin only)",
		Args:  cobra.ExactArgs(2),
		RunE:  runSetShelter,
	}
	addChainFlags(cmd)
	addSignerFlags(cmd)
	return cmd
}

func runSetShelter(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	shelter, err := config.ParseAddress(args[1])
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	session, writer, err := openWriter(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer session.Disconnect()

	return reportResult(writer.SetShelter(ctx, session, args[0], shelter))
}

// reportResult prints the transaction outcome. A declined approval is a
// cancellation, not a failure; the command exits zero.
func reportResult(result *model.TxResult, err error) error {
	if adoption.IsKind(err, adoption.KindUserRejected) {
		fmt.Println("cancelled: transaction was not approved")
		return nil
	}
	if err != nil {
		return err
	}
	printResult(result)
	return nil
}

func printResult(result *model.TxResult) {
	fmt.Printf("tx %s confirmed in block %d\n", result.Hash, result.BlockNumber)
	for _, event := range result.Events {
		switch decoded := event.Decoded.(type) {
		case model.PetAdoptedData:
			fmt.Printf("  PetAdopted pet=%s amount=%s ETH adopter=%s shelter=%s\n",
				decoded.PetID, units.FormatWeiString(decoded.Amount), decoded.Adopter, decoded.Shelter)
		case model.PetFedData:
			fmt.Printf("  PetFed pet=%s amount=%s ETH feeder=%s shelter=%s\n",
				decoded.PetID, units.FormatWeiString(decoded.Amount), decoded.Feeder, decoded.Shelter)
		case model.FundsForwardedData:
			fmt.Printf("  FundsForwarded shelter=%s amount=%s ETH\n",
				decoded.Shelter, units.FormatWeiString(decoded.Amount))
		case model.ShelterSetData:
			fmt.Printf("  ShelterSet shelter=%s\n", decoded.Shelter)
		default:
			fmt.Printf("  %s\n", event.EventName)
		}
	}
	if result.Event(adoption.EventFundsForwarded) == nil {
		fmt.Println("  (no funds forwarded)")
	}
}
