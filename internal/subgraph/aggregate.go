package subgraph

import (
	"fmt"
	"math/big"
	"sort"
	"strconv"

	"petadopt/internal/model"
)

// GroupForwardsByShelter folds forwarding records into per-shelter
// groups: running amount sum, transaction count, and the most recent
// activity timestamp. Groups are sorted by last activity, newest first.
func GroupForwardsByShelter(forwards []model.ForwardRecord) ([]model.ShelterGroup, error) {
	byShelter := make(map[string]*model.ShelterGroup)
	order := make([]string, 0, len(forwards))

	for _, forward := range forwards {
		amount, err := parseBigInt(forward.Amount)
		if err != nil {
			return nil, fmt.Errorf("forward %s: %w", forward.TransactionHash, err)
		}
		ts, err := parseTimestamp(forward.BlockTimestamp)
		if err != nil {
			return nil, fmt.Errorf("forward %s: %w", forward.TransactionHash, err)
		}

		group, ok := byShelter[forward.Shelter]
		if !ok {
			group = &model.ShelterGroup{
				Shelter:     forward.Shelter,
				TotalAmount: big.NewInt(0),
			}
			byShelter[forward.Shelter] = group
			order = append(order, forward.Shelter)
		}

		group.TotalAmount.Add(group.TotalAmount, amount)
		group.TxCount++
		if ts > group.LastActivity {
			group.LastActivity = ts
		}
	}

	groups := make([]model.ShelterGroup, 0, len(order))
	for _, shelter := range order {
		groups = append(groups, *byShelter[shelter])
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].LastActivity > groups[j].LastActivity
	})
	return groups, nil
}

func parseBigInt(value string) (*big.Int, error) {
	if value == "" {
		return big.NewInt(0), nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %s", value)
	}
	return parsed, nil
}

func parseTimestamp(value string) (uint64, error) {
	if value == "" {
		return 0, nil
	}
	ts, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp: %s", value)
	}
	return ts, nil
}
