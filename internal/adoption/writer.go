package adoption

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"petadopt/internal/model"
	"petadopt/internal/units"
)

const (
	// defaultConfirmInterval is the receipt polling period.
	defaultConfirmInterval = 2 * time.Second
	// defaultGasFallback is used when gas estimation fails. Estimation
	// failure is not fatal; the network rejects truly invalid calls at
	// submission time.
	defaultGasFallback = 300_000
	// gasSafetyFactor scales a successful estimate to tolerate variance.
	gasSafetyFactor = 2
)

// WriteBackend is the chain surface the Writer depends on.
type WriteBackend interface {
	ReadBackend
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
}

// TxSigner supplies the signing capability for state-changing calls.
// The session manager owns it; the writer only reads it.
type TxSigner interface {
	Account() (common.Address, bool)
	SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// WriterConfig holds the writer's static configuration.
type WriterConfig struct {
	Contract        common.Address
	ChainID         *big.Int
	ConfirmInterval time.Duration
	GasFallback     uint64
}

// Writer submits state-changing calls following a fixed pipeline:
// validate, preflight, simulate, estimate, submit, confirm, decode.
type Writer struct {
	cfg         WriterConfig
	backend     WriteBackend
	reader      *Reader
	decoder     *EventDecoder
	contractABI abi.ABI
	logger      *zap.Logger
}

// NewWriter builds a write adapter for the configured contract.
func NewWriter(cfg WriterConfig, backend WriteBackend, logger *zap.Logger) (*Writer, error) {
	if cfg.ChainID == nil {
		return nil, fmt.Errorf("chain id is required")
	}
	if cfg.ConfirmInterval <= 0 {
		cfg.ConfirmInterval = defaultConfirmInterval
	}
	if cfg.GasFallback == 0 {
		cfg.GasFallback = defaultGasFallback
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	contractABI, err := ContractABI()
	if err != nil {
		return nil, err
	}
	reader, err := NewReader(backend, cfg.Contract)
	if err != nil {
		return nil, err
	}
	decoder, err := NewEventDecoder(cfg.Contract, logger)
	if err != nil {
		return nil, err
	}

	return &Writer{
		cfg:         cfg,
		backend:     backend,
		reader:      reader,
		decoder:     decoder,
		contractABI: contractABI,
		logger:      logger,
	}, nil
}

// Reader exposes the writer's read adapter for preflight-style queries.
func (w *Writer) Reader() *Reader {
	return w.reader
}

// Adopt submits an adoption payment for a pet.
func (w *Writer) Adopt(ctx context.Context, signer TxSigner, petID, amount string) (*model.TxResult, error) {
	from, err := w.requireSigner(signer)
	if err != nil {
		return nil, err
	}
	if petID == "" {
		return nil, fmt.Errorf("pet id is required")
	}
	value, err := units.ParseEther(amount)
	if err != nil {
		return nil, WrapError(KindInvalidAmount, fmt.Sprintf("invalid amount %q", amount), err)
	}

	// Preflight: never submit a transaction the contract is known to revert.
	info, err := w.reader.PetInfo(ctx, petID)
	if err != nil {
		return nil, err
	}
	if !info.Adoptable() {
		return nil, NewError(KindPetNotEligible,
			fmt.Sprintf("pet %s is not adoptable (inactive or no shelter assigned)", petID))
	}

	data, err := w.contractABI.Pack("adoptPet", petID)
	if err != nil {
		return nil, fmt.Errorf("pack adoptPet: %w", err)
	}

	w.logger.Info("adopt pet",
		zap.String("pet_id", petID),
		zap.String("value_wei", value.String()),
		zap.String("from", from.Hex()),
	)
	return w.execute(ctx, signer, from, data, value)
}

// Feed submits a feeding payment for a pet. The contract accepts
// feeding regardless of adoption status, so no eligibility preflight.
func (w *Writer) Feed(ctx context.Context, signer TxSigner, petID, amount string) (*model.TxResult, error) {
	from, err := w.requireSigner(signer)
	if err != nil {
		return nil, err
	}
	if petID == "" {
		return nil, fmt.Errorf("pet id is required")
	}
	value, err := units.ParseEther(amount)
	if err != nil {
		return nil, WrapError(KindInvalidAmount, fmt.Sprintf("invalid amount %q", amount), err)
	}

	data, err := w.contractABI.Pack("feedPet", petID)
	if err != nil {
		return nil, fmt.Errorf("pack feedPet: %w", err)
	}

	w.logger.Info("feed pet",
		zap.String("pet_id", petID),
		zap.String("value_wei", value.String()),
		zap.String("from", from.Hex()),
	)
	return w.execute(ctx, signer, from, data, value)
}

// SetShelter assigns the responsible shelter for a pet. Authorization is
// the contract administrator's; a rejection surfaces as a simulation
// revert, not a local precondition.
func (w *Writer) SetShelter(ctx context.Context, signer TxSigner, petID string, shelter common.Address) (*model.TxResult, error) {
	from, err := w.requireSigner(signer)
	if err != nil {
		return nil, err
	}
	if petID == "" {
		return nil, fmt.Errorf("pet id is required")
	}

	data, err := w.contractABI.Pack("setPetShelter", petID, shelter)
	if err != nil {
		return nil, fmt.Errorf("pack setPetShelter: %w", err)
	}

	w.logger.Info("set pet shelter",
		zap.String("pet_id", petID),
		zap.String("shelter", shelter.Hex()),
		zap.String("from", from.Hex()),
	)
	return w.execute(ctx, signer, from, data, nil)
}

// Deploy submits a contract-creation transaction and returns the
// deployed address once confirmed.
func (w *Writer) Deploy(ctx context.Context, signer TxSigner, bytecode []byte) (common.Address, *model.TxResult, error) {
	from, err := w.requireSigner(signer)
	if err != nil {
		return common.Address{}, nil, err
	}
	if len(bytecode) == 0 {
		return common.Address{}, nil, fmt.Errorf("bytecode is required")
	}

	gasLimit := w.estimateGas(ctx, ethereum.CallMsg{From: from, Data: bytecode})
	receipt, err := w.submitAndConfirm(ctx, signer, from, nil, bytecode, nil, gasLimit)
	if err != nil {
		return common.Address{}, nil, err
	}

	result := w.buildResult(ctx, receipt)
	w.logger.Info("contract deployed",
		zap.String("address", receipt.ContractAddress.Hex()),
		zap.Uint64("block", result.BlockNumber),
	)
	return receipt.ContractAddress, result, nil
}

func (w *Writer) requireSigner(signer TxSigner) (common.Address, error) {
	if signer == nil {
		return common.Address{}, NewError(KindNotConnected, "no wallet connected")
	}
	from, ok := signer.Account()
	if !ok {
		return common.Address{}, NewError(KindNotConnected, "no wallet connected")
	}
	return from, nil
}

// execute runs simulate, estimate, submit, confirm, decode for a call
// against the contract. Steps run strictly in order; each waits for its
// predecessor.
func (w *Writer) execute(ctx context.Context, signer TxSigner, from common.Address, data []byte, value *big.Int) (*model.TxResult, error) {
	msg := ethereum.CallMsg{
		From:  from,
		To:    &w.cfg.Contract,
		Value: value,
		Data:  data,
	}

	// Simulation surfaces the revert reason before any gas is spent.
	if _, err := w.backend.CallContract(ctx, msg, nil); err != nil {
		return nil, classifyCallError(err)
	}

	gasLimit := w.estimateGas(ctx, msg)

	receipt, err := w.submitAndConfirm(ctx, signer, from, &w.cfg.Contract, data, value, gasLimit)
	if err != nil {
		return nil, err
	}

	result := w.buildResult(ctx, receipt)
	w.logger.Info("transaction confirmed",
		zap.String("hash", result.Hash),
		zap.Uint64("block", result.BlockNumber),
		zap.Int("events", len(result.Events)),
	)
	return result, nil
}

func (w *Writer) estimateGas(ctx context.Context, msg ethereum.CallMsg) uint64 {
	estimate, err := w.backend.EstimateGas(ctx, msg)
	if err != nil {
		w.logger.Warn("gas estimation failed, using fallback limit",
			zap.Uint64("fallback", w.cfg.GasFallback),
			zap.Error(err),
		)
		return w.cfg.GasFallback
	}
	return estimate * gasSafetyFactor
}

func (w *Writer) submitAndConfirm(
	ctx context.Context,
	signer TxSigner,
	from common.Address,
	to *common.Address,
	data []byte,
	value *big.Int,
	gasLimit uint64,
) (*types.Receipt, error) {
	gasPrice, err := w.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("suggest gas price: %w", err)
	}
	nonce, err := w.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("fetch nonce: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       to,
		Value:    value,
		Data:     data,
	})

	signed, err := signer.SignTx(tx, w.cfg.ChainID)
	if err != nil {
		return nil, classifySubmitError(err)
	}
	if err := w.backend.SendTransaction(ctx, signed); err != nil {
		return nil, classifySubmitError(err)
	}

	w.logger.Info("transaction submitted",
		zap.String("hash", signed.Hash().Hex()),
		zap.Uint64("nonce", nonce),
		zap.Uint64("gas_limit", gasLimit),
	)

	receipt, err := w.waitMined(ctx, signed.Hash())
	if err != nil {
		return nil, err
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return nil, NewError(KindTransactionReverted,
			fmt.Sprintf("transaction %s reverted on-chain", signed.Hash().Hex()))
	}
	return receipt, nil
}

// waitMined polls for the receipt until the transaction is included or
// the context ends. A submitted transaction cannot be withdrawn; ctx
// cancellation stops the wait, not the transaction.
func (w *Writer) waitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(w.cfg.ConfirmInterval)
	defer ticker.Stop()

	for {
		receipt, err := w.backend.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			w.logger.Debug("receipt fetch failed", zap.String("hash", hash.Hex()), zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *Writer) buildResult(ctx context.Context, receipt *types.Receipt) *model.TxResult {
	events := w.decoder.DecodeReceipt(receipt)

	ts, err := w.backend.BlockTimestamp(ctx, receipt.BlockNumber.Uint64())
	if err != nil {
		// The transaction is confirmed; a failed timestamp lookup only
		// degrades the decoded events.
		w.logger.Warn("block timestamp lookup failed",
			zap.Uint64("block", receipt.BlockNumber.Uint64()),
			zap.Error(err),
		)
	} else {
		for i := range events {
			events[i].Timestamp = ts
		}
	}

	return &model.TxResult{
		Hash:        receipt.TxHash.Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
		Events:      events,
	}
}
