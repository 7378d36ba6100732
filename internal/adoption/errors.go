package adoption

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Kind classifies a failure of the adoption adapters.
type Kind string

const (
	// KindNotConnected means no signing capability is available.
	KindNotConnected Kind = "not_connected"
	// KindInvalidAmount means the supplied amount failed non-negative decimal parsing.
	KindInvalidAmount Kind = "invalid_amount"
	// KindPetNotEligible means preflight reported an inactive or unassigned pet.
	KindPetNotEligible Kind = "pet_not_eligible"
	// KindSimulationReverted means the no-state-change preflight call reverted.
	KindSimulationReverted Kind = "simulation_reverted"
	// KindInsufficientFunds means the signer cannot cover value plus gas.
	KindInsufficientFunds Kind = "insufficient_funds"
	// KindSubmissionFailed means signing or broadcasting the transaction failed.
	KindSubmissionFailed Kind = "submission_failed"
	// KindTransactionReverted means the mined transaction reverted on-chain.
	KindTransactionReverted Kind = "transaction_reverted"
	// KindUserRejected means the signer declined to authorize the transaction.
	KindUserRejected Kind = "user_rejected"
	// KindIndexUnavailable means an indexing-service query failed.
	KindIndexUnavailable Kind = "index_unavailable"
	// KindContractAbsent means no bytecode exists at the configured address.
	KindContractAbsent Kind = "contract_absent"
)

// Error is a classified adapter failure with a normalized message.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same Kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// NewError builds a classified error.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError builds a classified error around a cause.
func WrapError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// IsKind reports whether err carries the given classification.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// dataError is the subset of go-ethereum's rpc.DataError needed to pull
// revert payloads out of call failures.
type dataError interface {
	Error() string
	ErrorData() interface{}
}

// RevertReason extracts the human-readable revert reason from a call error,
// when the node supplied one.
func RevertReason(err error) (string, bool) {
	var de dataError
	if !errors.As(err, &de) {
		return reasonFromMessage(err)
	}

	data, ok := de.ErrorData().(string)
	if !ok {
		return reasonFromMessage(err)
	}
	raw, decodeErr := hexutil.Decode(data)
	if decodeErr != nil {
		return reasonFromMessage(err)
	}
	reason, unpackErr := abi.UnpackRevert(raw)
	if unpackErr != nil {
		return reasonFromMessage(err)
	}
	return reason, true
}

func reasonFromMessage(err error) (string, bool) {
	const marker = "execution reverted: "
	msg := err.Error()
	if idx := strings.Index(msg, marker); idx >= 0 {
		return msg[idx+len(marker):], true
	}
	return "", false
}

// classifyCallError turns a simulation failure into a taxonomy error,
// surfacing the revert reason verbatim when the chain supplies one.
func classifyCallError(err error) *Error {
	if reason, ok := RevertReason(err); ok && reason != "" {
		return WrapError(KindSimulationReverted, fmt.Sprintf("contract reverted: %s", reason), err)
	}
	if isInsufficientFunds(err) {
		return WrapError(KindInsufficientFunds, "insufficient funds for value plus gas", err)
	}
	return WrapError(KindSimulationReverted, "contract call failed", err)
}

// classifySubmitError turns a signing or submission failure into a taxonomy error.
func classifySubmitError(err error) *Error {
	if isInsufficientFunds(err) {
		return WrapError(KindInsufficientFunds, "insufficient funds for value plus gas", err)
	}
	if isUserRejection(err) {
		return WrapError(KindUserRejected, "transaction rejected by user", err)
	}
	return WrapError(KindSubmissionFailed, "transaction submission failed", err)
}

func isInsufficientFunds(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "insufficient funds")
}

func isUserRejection(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rejected") || strings.Contains(msg, "declined") || strings.Contains(msg, "denied")
}
