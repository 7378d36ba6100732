package model

// DecodedEvent is one contract event recovered from a receipt or log scan.
type DecodedEvent struct {
	EventName   string      `json:"event_name"`
	BlockNumber uint64      `json:"block_number"`
	TxHash      string      `json:"tx_hash"`
	LogIndex    uint64      `json:"log_index"`
	Timestamp   uint64      `json:"timestamp,omitempty"`
	Decoded     interface{} `json:"decoded"`
}

// TxResult is the outcome of a confirmed state-changing call.
type TxResult struct {
	Hash        string         `json:"hash"`
	BlockNumber uint64         `json:"block_number"`
	Events      []DecodedEvent `json:"events"`
}

// Event returns the first decoded event with the given name, or nil.
func (r *TxResult) Event(name string) *DecodedEvent {
	for i := range r.Events {
		if r.Events[i].EventName == name {
			return &r.Events[i]
		}
	}
	return nil
}
