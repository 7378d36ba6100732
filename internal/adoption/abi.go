package adoption

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const adoptionABIJSON = `[
  {
    "inputs": [],
    "name": "owner",
    "outputs": [{"internalType": "address", "name": "", "type": "address"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "string", "name": "petId", "type": "string"}],
    "name": "getPetInfo",
    "outputs": [
      {"internalType": "string", "name": "", "type": "string"},
      {"internalType": "uint256", "name": "", "type": "uint256"},
      {"internalType": "address", "name": "", "type": "address"},
      {"internalType": "address", "name": "", "type": "address"},
      {"internalType": "bool", "name": "", "type": "bool"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "string", "name": "petId", "type": "string"},
      {"internalType": "address", "name": "shelter", "type": "address"}
    ],
    "name": "setPetShelter",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "string", "name": "petId", "type": "string"}],
    "name": "adoptPet",
    "outputs": [],
    "stateMutability": "payable",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "string", "name": "petId", "type": "string"}],
    "name": "feedPet",
    "outputs": [],
    "stateMutability": "payable",
    "type": "function"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "adopter", "type": "address"},
      {"indexed": false, "internalType": "string", "name": "petId", "type": "string"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"},
      {"indexed": false, "internalType": "address", "name": "shelter", "type": "address"}
    ],
    "name": "PetAdopted",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "feeder", "type": "address"},
      {"indexed": false, "internalType": "string", "name": "petId", "type": "string"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"},
      {"indexed": false, "internalType": "address", "name": "shelter", "type": "address"}
    ],
    "name": "PetFed",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "string", "name": "petId", "type": "string"},
      {"indexed": true, "internalType": "address", "name": "shelter", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"}
    ],
    "name": "FundsForwarded",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "string", "name": "petId", "type": "string"},
      {"indexed": true, "internalType": "address", "name": "shelter", "type": "address"}
    ],
    "name": "ShelterSet",
    "type": "event"
  }
]`

var (
	adoptionABI     abi.ABI
	adoptionABIOnce sync.Once
	adoptionABIErr  error
)

// ContractABI returns the parsed adoption contract ABI.
func ContractABI() (abi.ABI, error) {
	adoptionABIOnce.Do(func() {
		adoptionABI, adoptionABIErr = abi.JSON(strings.NewReader(adoptionABIJSON))
	})
	return adoptionABI, adoptionABIErr
}
