package model

// FundsForwardedData is the decoded FundsForwarded event payload.
// The pet id is an indexed string parameter, so only its topic hash
// survives in the log; the subgraph exposes the plain string instead.
type FundsForwardedData struct {
	PetIDHash string `json:"pet_id_hash"`
	Shelter   string `json:"shelter"`
	Amount    string `json:"amount"`
}

// PetAdoptedData is the decoded PetAdopted event payload.
type PetAdoptedData struct {
	Adopter string `json:"adopter"`
	PetID   string `json:"pet_id"`
	Amount  string `json:"amount"`
	Shelter string `json:"shelter"`
}

// PetFedData is the decoded PetFed event payload.
type PetFedData struct {
	Feeder  string `json:"feeder"`
	PetID   string `json:"pet_id"`
	Amount  string `json:"amount"`
	Shelter string `json:"shelter"`
}

// ShelterSetData is the decoded ShelterSet event payload.
type ShelterSetData struct {
	PetIDHash string `json:"pet_id_hash"`
	Shelter   string `json:"shelter"`
}
