package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"cheapswap/internal/model"
)

// Journal buffers engine events in commit order and assigns sequence
// numbers. It satisfies the pair engine's Recorder interface. Truncation
// lets a failed operation discard its partial records.
type Journal struct {
	now     func() uint64
	nextSeq uint64
	events  []model.EventRecord
}

// NewJournal creates a journal. now may be nil, in which case wall time is
// used for record timestamps.
func NewJournal(now func() uint64) *Journal {
	if now == nil {
		now = func() uint64 { return uint64(time.Now().Unix()) }
	}
	return &Journal{now: now}
}

// Record appends a typed event. Payloads that fail to marshal are recorded
// with a null body rather than dropped, so sequence numbers stay dense.
func (j *Journal) Record(emitter common.Address, eventName string, payload interface{}) {
	decoded, err := json.Marshal(payload)
	if err != nil {
		decoded = []byte("null")
	}
	j.events = append(j.events, model.EventRecord{
		Seq:       j.nextSeq,
		Timestamp: j.now(),
		Emitter:   emitter.Hex(),
		EventName: eventName,
		Decoded:   decoded,
	})
	j.nextSeq++
}

// Len returns the number of buffered records.
func (j *Journal) Len() int {
	return len(j.events)
}

// TruncateTo discards records at index n and beyond, rewinding the
// sequence counter with them.
func (j *Journal) TruncateTo(n int) {
	if n < 0 || n >= len(j.events) {
		return
	}
	j.nextSeq = j.events[n].Seq
	j.events = j.events[:n]
}

// Discard drops buffered records without rewinding the sequence counter,
// so later records continue the numbering. Used when re-applied operations
// rebuild state whose events were already persisted.
func (j *Journal) Discard() {
	j.events = j.events[:0]
}

// Events returns the buffered records without draining them.
func (j *Journal) Events() []model.EventRecord {
	out := make([]model.EventRecord, len(j.events))
	copy(out, j.events)
	return out
}

// Flush writes all buffered records to the sink and clears the buffer on
// success.
func (j *Journal) Flush(sink EventSink) error {
	if len(j.events) == 0 {
		return nil
	}
	if err := sink.PutEventBatch(j.events); err != nil {
		return fmt.Errorf("flush journal: %w", err)
	}
	j.events = j.events[:0]
	return nil
}
