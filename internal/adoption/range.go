package adoption

import "fmt"

// BlockRange is an inclusive block interval.
type BlockRange struct {
	From uint64
	To   uint64
}

// SplitRange divides [from, to] into consecutive ranges of at most
// batchSize blocks.
func SplitRange(from, to, batchSize uint64) ([]BlockRange, error) {
	if from > to {
		return nil, fmt.Errorf("invalid range: from %d > to %d", from, to)
	}
	if batchSize == 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}

	ranges := make([]BlockRange, 0, (to-from)/batchSize+1)
	for start := from; ; {
		// Clamp by the remaining count so the end never wraps, even for
		// block numbers or batch sizes near the uint64 ceiling.
		size := batchSize
		if remaining := to - start; remaining < size {
			size = remaining + 1
		}
		end := start + size - 1
		ranges = append(ranges, BlockRange{From: start, To: end})
		if end == to {
			break
		}
		start = end + 1
	}
	return ranges, nil
}
