package subgraph

import (
	"context"
	"strings"

	"petadopt/internal/model"
)

const recentForwardsQuery = `
query($n: Int!) {
  fundsForwardeds(first: $n, orderBy: blockTimestamp, orderDirection: desc) {
    petId shelter amount blockTimestamp transactionHash
  }
}`

const recentAdoptionsQuery = `
query($n: Int!) {
  petAdopteds(first: $n, orderBy: blockTimestamp, orderDirection: desc) {
    petId amount adopter shelter blockTimestamp transactionHash
  }
}`

const shelterActivityQuery = `
query($shelter: Bytes!) {
  fundsForwardeds(first: 20, orderBy: blockTimestamp, orderDirection: desc, where: {shelter: $shelter}) {
    petId shelter amount blockTimestamp transactionHash
  }
  petAdopteds(first: 20, orderBy: blockTimestamp, orderDirection: desc, where: {shelter: $shelter}) {
    petId amount adopter shelter blockTimestamp transactionHash
  }
}`

const adopterHistoryQuery = `
query($adopter: Bytes!) {
  petAdopteds(first: 20, orderBy: blockTimestamp, orderDirection: desc, where: {adopter: $adopter}) {
    petId amount shelter adopter blockTimestamp transactionHash
  }
}`

// ShelterActivity pairs the two record kinds attributable to one shelter.
type ShelterActivity struct {
	Forwards  []model.ForwardRecord  `json:"fundsForwardeds"`
	Adoptions []model.AdoptionRecord `json:"petAdopteds"`
}

// RecentForwards returns the most recent forwarding records, newest first.
func (c *Client) RecentForwards(ctx context.Context, limit int) ([]model.ForwardRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	var out struct {
		Forwards []model.ForwardRecord `json:"fundsForwardeds"`
	}
	if err := c.query(ctx, recentForwardsQuery, map[string]interface{}{"n": limit}, &out); err != nil {
		return nil, err
	}
	return out.Forwards, nil
}

// RecentAdoptions returns the most recent adoption records, newest first.
func (c *Client) RecentAdoptions(ctx context.Context, limit int) ([]model.AdoptionRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	var out struct {
		Adoptions []model.AdoptionRecord `json:"petAdopteds"`
	}
	if err := c.query(ctx, recentAdoptionsQuery, map[string]interface{}{"n": limit}, &out); err != nil {
		return nil, err
	}
	return out.Adoptions, nil
}

// ShelterActivity returns recent forwards and adoptions for one shelter.
func (c *Client) ShelterActivity(ctx context.Context, shelter string) (*ShelterActivity, error) {
	var out ShelterActivity
	err := c.query(ctx, shelterActivityQuery, map[string]interface{}{"shelter": normalizeAddress(shelter)}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AdopterHistory returns recent adoptions made by one adopter.
func (c *Client) AdopterHistory(ctx context.Context, adopter string) ([]model.AdoptionRecord, error) {
	var out struct {
		Adoptions []model.AdoptionRecord `json:"petAdopteds"`
	}
	err := c.query(ctx, adopterHistoryQuery, map[string]interface{}{"adopter": normalizeAddress(adopter)}, &out)
	if err != nil {
		return nil, err
	}
	return out.Adoptions, nil
}

// UniqueShelters fetches the most recent limit forwarding records and
// aggregates them per shelter. Totals reflect only that window, not
// lifetime history.
func (c *Client) UniqueShelters(ctx context.Context, limit int) ([]model.ShelterGroup, error) {
	if limit <= 0 {
		limit = 50
	}
	forwards, err := c.RecentForwards(ctx, limit)
	if err != nil {
		return nil, err
	}
	return GroupForwardsByShelter(forwards)
}

// The Graph stores Bytes values lowercased; checksummed input would
// never match a where filter.
func normalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}
