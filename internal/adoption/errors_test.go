package adoption

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

type rpcDataError struct {
	msg  string
	data interface{}
}

func (e *rpcDataError) Error() string          { return e.msg }
func (e *rpcDataError) ErrorData() interface{} { return e.data }

// encodeRevert builds the Error(string) payload a node returns for a
// require failure.
func encodeRevert(t *testing.T, reason string) string {
	t.Helper()
	stringType, err := abi.NewType("string", "", nil)
	if err != nil {
		t.Fatalf("string type: %v", err)
	}
	packed, err := abi.Arguments{{Type: stringType}}.Pack(reason)
	if err != nil {
		t.Fatalf("pack reason: %v", err)
	}
	selector := []byte{0x08, 0xc3, 0x79, 0xa0}
	return hexutil.Encode(append(selector, packed...))
}

func TestRevertReasonFromErrorData(t *testing.T) {
	err := &rpcDataError{
		msg:  "execution reverted",
		data: encodeRevert(t, "pet already adopted"),
	}
	reason, ok := RevertReason(err)
	if !ok || reason != "pet already adopted" {
		t.Fatalf("got %q, %v", reason, ok)
	}
}

func TestRevertReasonFromMessage(t *testing.T) {
	err := errors.New("execution reverted: shelter not set")
	reason, ok := RevertReason(err)
	if !ok || reason != "shelter not set" {
		t.Fatalf("got %q, %v", reason, ok)
	}
}

func TestRevertReasonAbsent(t *testing.T) {
	if reason, ok := RevertReason(errors.New("connection refused")); ok {
		t.Fatalf("unexpected reason %q", reason)
	}
}

func TestRevertReasonBadData(t *testing.T) {
	// Undecodable data falls back to message parsing.
	err := &rpcDataError{
		msg:  "execution reverted: fallback reason",
		data: "not-hex",
	}
	reason, ok := RevertReason(err)
	if !ok || reason != "fallback reason" {
		t.Fatalf("got %q, %v", reason, ok)
	}
}

func TestClassifyCallError(t *testing.T) {
	cases := []struct {
		err  error
		kind Kind
	}{
		{errors.New("execution reverted: not active"), KindSimulationReverted},
		{errors.New("insufficient funds for transfer"), KindInsufficientFunds},
		{errors.New("nonce too low"), KindSimulationReverted},
	}
	for _, tc := range cases {
		if got := classifyCallError(tc.err); got.Kind != tc.kind {
			t.Fatalf("%v: got %s, want %s", tc.err, got.Kind, tc.kind)
		}
	}
}

func TestClassifySubmitError(t *testing.T) {
	cases := []struct {
		err  error
		kind Kind
	}{
		{errors.New("insufficient funds for gas * price + value"), KindInsufficientFunds},
		{errors.New("user rejected the request"), KindUserRejected},
		{errors.New("signing declined"), KindUserRejected},
		{errors.New("connection reset"), KindSubmissionFailed},
	}
	for _, tc := range cases {
		if got := classifySubmitError(tc.err); got.Kind != tc.kind {
			t.Fatalf("%v: got %s, want %s", tc.err, got.Kind, tc.kind)
		}
	}
}

func TestErrorMatching(t *testing.T) {
	inner := errors.New("boom")
	err := WrapError(KindInvalidAmount, "bad amount", inner)

	if !IsKind(err, KindInvalidAmount) {
		t.Fatalf("IsKind failed")
	}
	if IsKind(err, KindNotConnected) {
		t.Fatalf("matched wrong kind")
	}
	if !errors.Is(err, inner) {
		t.Fatalf("cause not unwrapped")
	}
	if !errors.Is(fmt.Errorf("wrapped: %w", err), NewError(KindInvalidAmount, "")) {
		t.Fatalf("kind matching through wrapping failed")
	}
}
