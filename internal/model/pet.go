package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PetInfo is a snapshot of one pet record as reported by the contract.
type PetInfo struct {
	PetID   string         `json:"pet_id"`
	Balance *big.Int       `json:"balance"`
	Adopter common.Address `json:"adopter"`
	Shelter common.Address `json:"shelter"`
	Active  bool           `json:"active"`
}

// Adoptable reports whether the pet can accept an adoption payment:
// it must be active and have a shelter assigned to receive the funds.
func (p PetInfo) Adoptable() bool {
	return p.Active && p.Shelter != (common.Address{})
}

// Adopted reports whether the pet already has an adopter on record.
func (p PetInfo) Adopted() bool {
	return p.Adopter != (common.Address{})
}
