package adoption

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"petadopt/internal/model"
)

var testContract = common.HexToAddress("0xE9D03cd2D4174e4CC15ab616f986501d7484f60b")

func topicFromAddress(addr common.Address) common.Hash {
	return common.BytesToHash(common.LeftPadBytes(addr.Bytes(), 32))
}

func fundsForwardedLog(t *testing.T, petID string, shelter common.Address, amount *big.Int) types.Log {
	t.Helper()
	contractABI, err := ContractABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	event := contractABI.Events[EventFundsForwarded]

	data, err := event.Inputs.NonIndexed().Pack(amount)
	if err != nil {
		t.Fatalf("pack funds forwarded: %v", err)
	}

	return types.Log{
		Address: testContract,
		Topics: []common.Hash{
			event.ID,
			crypto.Keccak256Hash([]byte(petID)),
			topicFromAddress(shelter),
		},
		Data:        data,
		BlockNumber: 100,
		TxHash:      common.HexToHash("0xabc"),
		Index:       0,
	}
}

func petAdoptedLog(t *testing.T, adopter common.Address, petID string, amount *big.Int, shelter common.Address) types.Log {
	t.Helper()
	contractABI, err := ContractABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	event := contractABI.Events[EventPetAdopted]

	data, err := event.Inputs.NonIndexed().Pack(petID, amount, shelter)
	if err != nil {
		t.Fatalf("pack pet adopted: %v", err)
	}

	return types.Log{
		Address:     testContract,
		Topics:      []common.Hash{event.ID, topicFromAddress(adopter)},
		Data:        data,
		BlockNumber: 100,
		TxHash:      common.HexToHash("0xabc"),
		Index:       1,
	}
}

func TestDecodeFundsForwarded(t *testing.T) {
	decoder, err := NewEventDecoder(testContract, zap.NewNop())
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	shelter := common.HexToAddress("0xD1B2A0692031082D16916454CFAbaae94E2Ee366")
	log := fundsForwardedLog(t, "7429", shelter, big.NewInt(1000000000000))

	event, err := decoder.Decode(log)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if event.EventName != EventFundsForwarded {
		t.Fatalf("event name mismatch: %s", event.EventName)
	}

	forwarded, ok := event.Decoded.(model.FundsForwardedData)
	if !ok {
		t.Fatalf("decoded type mismatch: %T", event.Decoded)
	}
	if forwarded.Amount != "1000000000000" {
		t.Fatalf("amount mismatch: %s", forwarded.Amount)
	}
	if forwarded.Shelter != shelter.Hex() {
		t.Fatalf("shelter mismatch: %s", forwarded.Shelter)
	}
	if forwarded.PetIDHash != crypto.Keccak256Hash([]byte("7429")).Hex() {
		t.Fatalf("pet id hash mismatch: %s", forwarded.PetIDHash)
	}
}

func TestDecodePetAdopted(t *testing.T) {
	decoder, err := NewEventDecoder(testContract, zap.NewNop())
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	adopter := common.HexToAddress("0x2222222222222222222222222222222222222222")
	shelter := common.HexToAddress("0xD1B2A0692031082D16916454CFAbaae94E2Ee366")
	log := petAdoptedLog(t, adopter, "7429", big.NewInt(42), shelter)

	event, err := decoder.Decode(log)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	adopted, ok := event.Decoded.(model.PetAdoptedData)
	if !ok {
		t.Fatalf("decoded type mismatch: %T", event.Decoded)
	}
	if adopted.PetID != "7429" || adopted.Amount != "42" {
		t.Fatalf("payload mismatch: %+v", adopted)
	}
	if adopted.Adopter != adopter.Hex() || adopted.Shelter != shelter.Hex() {
		t.Fatalf("address mismatch: %+v", adopted)
	}
}

func TestDecodeReceiptSkipsUnrelatedLogs(t *testing.T) {
	decoder, err := NewEventDecoder(testContract, zap.NewNop())
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	shelter := common.HexToAddress("0xD1B2A0692031082D16916454CFAbaae94E2Ee366")
	forwarded := fundsForwardedLog(t, "7429", shelter, big.NewInt(100))

	// A log from some unrelated contract with a foreign topic.
	unrelated := types.Log{
		Address: common.HexToAddress("0x9999999999999999999999999999999999999999"),
		Topics:  []common.Hash{common.HexToHash("0xdeadbeef")},
		Data:    []byte{0x01, 0x02},
	}

	receipt := &types.Receipt{Logs: []*types.Log{&unrelated, &forwarded}}
	events := decoder.DecodeReceipt(receipt)

	if len(events) != 1 {
		t.Fatalf("expected exactly 1 decoded event, got %d", len(events))
	}
	if events[0].EventName != EventFundsForwarded {
		t.Fatalf("event name mismatch: %s", events[0].EventName)
	}
}

func TestDecodeReceiptSkipsForeignContractSameTopic(t *testing.T) {
	decoder, err := NewEventDecoder(testContract, zap.NewNop())
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	shelter := common.HexToAddress("0xD1B2A0692031082D16916454CFAbaae94E2Ee366")
	foreign := fundsForwardedLog(t, "7429", shelter, big.NewInt(100))
	foreign.Address = common.HexToAddress("0x8888888888888888888888888888888888888888")

	receipt := &types.Receipt{Logs: []*types.Log{&foreign}}
	if events := decoder.DecodeReceipt(receipt); len(events) != 0 {
		t.Fatalf("expected no events from a foreign contract, got %d", len(events))
	}
}
