package model

import "math/big"

// ForwardRecord is one FundsForwarded row from the indexing service.
// Amount is a decimal wei string; amounts can exceed uint64.
type ForwardRecord struct {
	PetID           string `json:"petId"`
	Shelter         string `json:"shelter"`
	Amount          string `json:"amount"`
	BlockTimestamp  string `json:"blockTimestamp"`
	TransactionHash string `json:"transactionHash"`
}

// AdoptionRecord is one PetAdopted row from the indexing service.
type AdoptionRecord struct {
	PetID           string `json:"petId"`
	Adopter         string `json:"adopter"`
	Shelter         string `json:"shelter"`
	Amount          string `json:"amount"`
	BlockTimestamp  string `json:"blockTimestamp"`
	TransactionHash string `json:"transactionHash"`
}

// ShelterGroup is a client-side aggregate over a window of forward records.
// Totals reflect only the fetched window, not lifetime history.
type ShelterGroup struct {
	Shelter      string   `json:"shelter"`
	TotalAmount  *big.Int `json:"total_amount"`
	TxCount      int      `json:"tx_count"`
	LastActivity uint64   `json:"last_activity"`
}
