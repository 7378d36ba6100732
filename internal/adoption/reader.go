package adoption

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"petadopt/internal/model"
)

// ReadBackend is the read-only chain surface the Reader depends on.
type ReadBackend interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// Reader issues read-only calls against the adoption contract.
// No caching: every call reflects the latest confirmed chain state.
type Reader struct {
	backend     ReadBackend
	contract    common.Address
	contractABI abi.ABI
}

// NewReader builds a read adapter for the configured contract.
func NewReader(backend ReadBackend, contract common.Address) (*Reader, error) {
	contractABI, err := ContractABI()
	if err != nil {
		return nil, err
	}
	return &Reader{
		backend:     backend,
		contract:    contract,
		contractABI: contractABI,
	}, nil
}

// Contract returns the configured contract address.
func (r *Reader) Contract() common.Address {
	return r.contract
}

// PetInfo returns the current pet record snapshot.
func (r *Reader) PetInfo(ctx context.Context, petID string) (model.PetInfo, error) {
	if petID == "" {
		return model.PetInfo{}, fmt.Errorf("pet id is required")
	}

	data, err := r.contractABI.Pack("getPetInfo", petID)
	if err != nil {
		return model.PetInfo{}, fmt.Errorf("pack getPetInfo: %w", err)
	}

	out, err := r.backend.CallContract(ctx, ethereum.CallMsg{To: &r.contract, Data: data}, nil)
	if err != nil {
		return model.PetInfo{}, classifyCallError(err)
	}

	values, err := r.contractABI.Unpack("getPetInfo", out)
	if err != nil {
		return model.PetInfo{}, fmt.Errorf("unpack getPetInfo: %w", err)
	}
	if len(values) != 5 {
		return model.PetInfo{}, fmt.Errorf("unexpected getPetInfo values: %d", len(values))
	}

	id, err := asString(values[0])
	if err != nil {
		return model.PetInfo{}, err
	}
	balance, err := asBigInt(values[1])
	if err != nil {
		return model.PetInfo{}, err
	}
	adopter, err := asAddress(values[2])
	if err != nil {
		return model.PetInfo{}, err
	}
	shelter, err := asAddress(values[3])
	if err != nil {
		return model.PetInfo{}, err
	}
	active, ok := values[4].(bool)
	if !ok {
		return model.PetInfo{}, fmt.Errorf("expected bool, got %T", values[4])
	}

	return model.PetInfo{
		PetID:   id,
		Balance: balance,
		Adopter: adopter,
		Shelter: shelter,
		Active:  active,
	}, nil
}

// Owner returns the contract administrator address.
func (r *Reader) Owner(ctx context.Context) (common.Address, error) {
	data, err := r.contractABI.Pack("owner")
	if err != nil {
		return common.Address{}, fmt.Errorf("pack owner: %w", err)
	}

	out, err := r.backend.CallContract(ctx, ethereum.CallMsg{To: &r.contract, Data: data}, nil)
	if err != nil {
		return common.Address{}, classifyCallError(err)
	}

	values, err := r.contractABI.Unpack("owner", out)
	if err != nil {
		return common.Address{}, fmt.Errorf("unpack owner: %w", err)
	}
	if len(values) != 1 {
		return common.Address{}, fmt.Errorf("unexpected owner values: %d", len(values))
	}
	return asAddress(values[0])
}

// ContractPresent reports whether deployed bytecode exists at the
// configured address. Checked once at session start so dependent
// actions can be disabled with a clear diagnostic.
func (r *Reader) ContractPresent(ctx context.Context) (bool, error) {
	code, err := r.backend.CodeAt(ctx, r.contract, nil)
	if err != nil {
		return false, fmt.Errorf("fetch code: %w", err)
	}
	return len(code) > 0, nil
}

// RequireContract fails with a ContractAbsent error when no bytecode is
// deployed at the configured address.
func (r *Reader) RequireContract(ctx context.Context) error {
	present, err := r.ContractPresent(ctx)
	if err != nil {
		return err
	}
	if !present {
		return NewError(KindContractAbsent, fmt.Sprintf("no contract deployed at %s", r.contract.Hex()))
	}
	return nil
}

// Balance returns the native-currency balance of an address.
func (r *Reader) Balance(ctx context.Context, account common.Address) (*big.Int, error) {
	return r.backend.BalanceAt(ctx, account, nil)
}
