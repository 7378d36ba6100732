package storage

import "petadopt/internal/model"

// ForwardSink is a sink for archived forwarding records.
type ForwardSink interface {
	PutForwardBatch(forwards []model.ForwardRecord) error
}

// AdoptionSink is a sink for archived adoption records.
type AdoptionSink interface {
	PutAdoptionBatch(adoptions []model.AdoptionRecord) error
}
