package storage

import "cheapswap/internal/model"

// EventSink is a sink for engine event records.
type EventSink interface {
	PutEventBatch(events []model.EventRecord) error
}
