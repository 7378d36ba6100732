package adoption

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"petadopt/internal/model"
)

// Event names emitted by the adoption contract.
const (
	EventFundsForwarded = "FundsForwarded"
	EventPetAdopted     = "PetAdopted"
	EventPetFed         = "PetFed"
	EventShelterSet     = "ShelterSet"
)

// EventDecoder decodes adoption contract logs into typed events.
type EventDecoder struct {
	contract    common.Address
	contractABI abi.ABI
	topicToName map[common.Hash]string
	logger      *zap.Logger
}

// NewEventDecoder builds a decoder bound to the configured contract address.
func NewEventDecoder(contract common.Address, logger *zap.Logger) (*EventDecoder, error) {
	contractABI, err := ContractABI()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	topicToName := map[common.Hash]string{
		contractABI.Events[EventFundsForwarded].ID: EventFundsForwarded,
		contractABI.Events[EventPetAdopted].ID:     EventPetAdopted,
		contractABI.Events[EventPetFed].ID:         EventPetFed,
		contractABI.Events[EventShelterSet].ID:     EventShelterSet,
	}

	return &EventDecoder{
		contract:    contract,
		contractABI: contractABI,
		topicToName: topicToName,
		logger:      logger,
	}, nil
}

// Topics returns the topic0 hashes of every known event, for log filtering.
func (d *EventDecoder) Topics() []common.Hash {
	topics := make([]common.Hash, 0, len(d.topicToName))
	for topic := range d.topicToName {
		topics = append(topics, topic)
	}
	return topics
}

// CanDecode reports whether the log carries a known event from the
// configured contract.
func (d *EventDecoder) CanDecode(log types.Log) bool {
	if log.Address != d.contract || len(log.Topics) == 0 {
		return false
	}
	_, ok := d.topicToName[log.Topics[0]]
	return ok
}

// Decode converts one log into a DecodedEvent.
func (d *EventDecoder) Decode(log types.Log) (*model.DecodedEvent, error) {
	if len(log.Topics) == 0 {
		return nil, fmt.Errorf("missing topics")
	}
	name, ok := d.topicToName[log.Topics[0]]
	if !ok {
		return nil, fmt.Errorf("unknown topic0: %s", log.Topics[0].Hex())
	}

	var decoded interface{}
	var err error
	switch name {
	case EventFundsForwarded:
		decoded, err = d.decodeFundsForwarded(log)
	case EventPetAdopted:
		decoded, err = d.decodePayment(log, EventPetAdopted)
	case EventPetFed:
		decoded, err = d.decodePayment(log, EventPetFed)
	case EventShelterSet:
		decoded, err = d.decodeShelterSet(log)
	}
	if err != nil {
		return nil, err
	}

	return &model.DecodedEvent{
		EventName:   name,
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash.Hex(),
		LogIndex:    uint64(log.Index),
		Decoded:     decoded,
	}, nil
}

// DecodeReceipt scans every log in a receipt and returns the decoded
// adoption events in log order. Logs from unrelated contracts or with
// unknown topics are expected and skipped.
func (d *EventDecoder) DecodeReceipt(receipt *types.Receipt) []model.DecodedEvent {
	events := make([]model.DecodedEvent, 0, len(receipt.Logs))
	for _, log := range receipt.Logs {
		if log == nil || !d.CanDecode(*log) {
			continue
		}
		event, err := d.Decode(*log)
		if err != nil {
			// Shape mismatch on a matching topic; skip, the log is not ours.
			d.logger.Debug("skip undecodable log",
				zap.String("tx", log.TxHash.Hex()),
				zap.Uint("log_index", log.Index),
				zap.Error(err),
			)
			continue
		}
		events = append(events, *event)
	}
	return events
}

// decodePayment handles PetAdopted and PetFed, which share a layout:
// one indexed address plus (petId, amount, shelter) in the data.
func (d *EventDecoder) decodePayment(log types.Log, name string) (interface{}, error) {
	event := d.contractABI.Events[name]
	if len(log.Topics) != 2 {
		return nil, fmt.Errorf("expected 2 topics, got %d", len(log.Topics))
	}

	values, err := event.Inputs.NonIndexed().Unpack(log.Data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", name, err)
	}
	if len(values) != 3 {
		return nil, fmt.Errorf("unexpected %s values: %d", name, len(values))
	}

	petID, err := asString(values[0])
	if err != nil {
		return nil, err
	}
	amount, err := asBigInt(values[1])
	if err != nil {
		return nil, err
	}
	shelter, err := asAddress(values[2])
	if err != nil {
		return nil, err
	}

	actor := common.BytesToAddress(log.Topics[1].Bytes())
	if name == EventPetFed {
		return model.PetFedData{
			Feeder:  actor.Hex(),
			PetID:   petID,
			Amount:  amount.String(),
			Shelter: shelter.Hex(),
		}, nil
	}
	return model.PetAdoptedData{
		Adopter: actor.Hex(),
		PetID:   petID,
		Amount:  amount.String(),
		Shelter: shelter.Hex(),
	}, nil
}

func (d *EventDecoder) decodeFundsForwarded(log types.Log) (interface{}, error) {
	event := d.contractABI.Events[EventFundsForwarded]
	if len(log.Topics) != 3 {
		return nil, fmt.Errorf("expected 3 topics, got %d", len(log.Topics))
	}

	values, err := event.Inputs.NonIndexed().Unpack(log.Data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", EventFundsForwarded, err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("unexpected %s values: %d", EventFundsForwarded, len(values))
	}
	amount, err := asBigInt(values[0])
	if err != nil {
		return nil, err
	}

	return model.FundsForwardedData{
		PetIDHash: log.Topics[1].Hex(),
		Shelter:   common.BytesToAddress(log.Topics[2].Bytes()).Hex(),
		Amount:    amount.String(),
	}, nil
}

func (d *EventDecoder) decodeShelterSet(log types.Log) (interface{}, error) {
	if len(log.Topics) != 3 {
		return nil, fmt.Errorf("expected 3 topics, got %d", len(log.Topics))
	}
	return model.ShelterSetData{
		PetIDHash: log.Topics[1].Hex(),
		Shelter:   common.BytesToAddress(log.Topics[2].Bytes()).Hex(),
	}, nil
}

func asBigInt(value interface{}) (*big.Int, error) {
	parsed, ok := value.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("expected *big.Int, got %T", value)
	}
	return parsed, nil
}

func asAddress(value interface{}) (common.Address, error) {
	parsed, ok := value.(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("expected address, got %T", value)
	}
	return parsed, nil
}

func asString(value interface{}) (string, error) {
	parsed, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", value)
	}
	return parsed, nil
}
