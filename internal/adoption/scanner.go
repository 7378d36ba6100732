package adoption

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"petadopt/internal/model"
)

// ScanBackend is the chain surface the Scanner depends on.
type ScanBackend interface {
	FilterLogs(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address, topic0 []common.Hash) ([]types.Log, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
	LatestBlockNumber(ctx context.Context) (uint64, error)
}

// Scanner recovers forwarding history directly from chain logs. It is
// the fallback when the indexing service is unavailable: same records,
// sourced from eth_getLogs instead of the subgraph.
type Scanner struct {
	backend ScanBackend
	decoder *EventDecoder
	logger  *zap.Logger
}

// NewScanner builds a scanner for the configured contract.
func NewScanner(backend ScanBackend, contract common.Address, logger *zap.Logger) (*Scanner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	decoder, err := NewEventDecoder(contract, logger)
	if err != nil {
		return nil, err
	}
	return &Scanner{
		backend: backend,
		decoder: decoder,
		logger:  logger,
	}, nil
}

// ScanForwards fetches and decodes FundsForwarded logs over [from, to],
// batched to respect provider range limits. A zero to means latest.
// Scanned records carry the pet id topic hash in the PetID field; the
// original string only exists in the subgraph.
func (s *Scanner) ScanForwards(ctx context.Context, from, to, batchSize uint64) ([]model.ForwardRecord, error) {
	if to == 0 {
		latest, err := s.backend.LatestBlockNumber(ctx)
		if err != nil {
			return nil, fmt.Errorf("get latest block: %w", err)
		}
		to = latest
	}
	if batchSize == 0 {
		batchSize = 2000
	}

	ranges, err := SplitRange(from, to, batchSize)
	if err != nil {
		return nil, err
	}

	contractABI, err := ContractABI()
	if err != nil {
		return nil, err
	}
	topic0 := []common.Hash{contractABI.Events[EventFundsForwarded].ID}

	var records []model.ForwardRecord
	for _, blockRange := range ranges {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		logs, err := s.backend.FilterLogs(ctx, blockRange.From, blockRange.To,
			[]common.Address{s.decoder.contract}, topic0)
		if err != nil {
			return nil, fmt.Errorf("filter logs %d-%d: %w", blockRange.From, blockRange.To, err)
		}

		for _, log := range logs {
			if log.Removed || !s.decoder.CanDecode(log) {
				continue
			}
			event, err := s.decoder.Decode(log)
			if err != nil {
				s.logger.Debug("skip undecodable log",
					zap.String("tx", log.TxHash.Hex()),
					zap.Uint("log_index", log.Index),
					zap.Error(err),
				)
				continue
			}
			forwarded, ok := event.Decoded.(model.FundsForwardedData)
			if !ok {
				continue
			}

			ts, err := s.backend.BlockTimestamp(ctx, log.BlockNumber)
			if err != nil {
				return nil, fmt.Errorf("block timestamp %d: %w", log.BlockNumber, err)
			}

			records = append(records, model.ForwardRecord{
				PetID:           forwarded.PetIDHash,
				Shelter:         forwarded.Shelter,
				Amount:          forwarded.Amount,
				BlockTimestamp:  fmt.Sprintf("%d", ts),
				TransactionHash: log.TxHash.Hex(),
			})
		}

		s.logger.Info("scan batch complete",
			zap.Uint64("from", blockRange.From),
			zap.Uint64("to", blockRange.To),
			zap.Int("records", len(records)),
		)
	}

	return records, nil
}
