package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"cheapswap/internal/model"
)

var emitter = common.HexToAddress("0x00000000000000000000000000000000000000aa")

func TestJournalAssignsDenseSequences(t *testing.T) {
	j := NewJournal(func() uint64 { return 42 })

	j.Record(emitter, model.EventSync, model.SyncEventData{Reserve0: "1", Reserve1: "2"})
	j.Record(emitter, model.EventMint, model.MintEventData{Sender: "a", Amount0: "1", Amount1: "2"})

	events := j.Events()
	if len(events) != 2 {
		t.Fatalf("len = %d", len(events))
	}
	for i, e := range events {
		if e.Seq != uint64(i) {
			t.Fatalf("seq[%d] = %d", i, e.Seq)
		}
		if e.Timestamp != 42 {
			t.Fatalf("timestamp = %d", e.Timestamp)
		}
		if e.Emitter != emitter.Hex() {
			t.Fatalf("emitter = %s", e.Emitter)
		}
	}

	var sync model.SyncEventData
	if err := json.Unmarshal(events[0].Decoded, &sync); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if sync.Reserve0 != "1" || sync.Reserve1 != "2" {
		t.Fatalf("payload = %+v", sync)
	}
}

func TestJournalTruncateRewindsSequence(t *testing.T) {
	j := NewJournal(func() uint64 { return 0 })
	for i := 0; i < 5; i++ {
		j.Record(emitter, model.EventSync, nil)
	}

	j.TruncateTo(2)
	if j.Len() != 2 {
		t.Fatalf("len after truncate = %d", j.Len())
	}

	// the next record reuses the discarded sequence number
	j.Record(emitter, model.EventSync, nil)
	events := j.Events()
	if got := events[len(events)-1].Seq; got != 2 {
		t.Fatalf("seq after truncate = %d, want 2", got)
	}

	// out-of-range truncation is a no-op
	j.TruncateTo(10)
	j.TruncateTo(-1)
	if j.Len() != 3 {
		t.Fatalf("len = %d", j.Len())
	}
}

func TestJournalDiscardKeepsSequence(t *testing.T) {
	j := NewJournal(func() uint64 { return 0 })
	for i := 0; i < 3; i++ {
		j.Record(emitter, model.EventSync, nil)
	}

	j.Discard()
	if j.Len() != 0 {
		t.Fatalf("len after discard = %d", j.Len())
	}

	j.Record(emitter, model.EventSync, nil)
	if got := j.Events()[0].Seq; got != 3 {
		t.Fatalf("seq after discard = %d, want 3", got)
	}
}

func TestJournalFlush(t *testing.T) {
	dir := t.TempDir()
	sink := NewJsonlSink(filepath.Join(dir, "events.jsonl"))

	j := NewJournal(func() uint64 { return 7 })
	j.Record(emitter, model.EventSync, model.SyncEventData{Reserve0: "5", Reserve1: "10"})
	want := j.Events()

	if err := j.Flush(sink); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if j.Len() != 0 {
		t.Fatalf("journal not drained: %d", j.Len())
	}

	got := readRecords(t, filepath.Join(dir, "events.jsonl"))
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("read back %+v, want %+v", got, want)
	}

	// sequence numbering continues across flushes
	j.Record(emitter, model.EventSync, nil)
	if got := j.Events()[0].Seq; got != 1 {
		t.Fatalf("seq after flush = %d, want 1", got)
	}
}

func TestJsonlSinkAppends(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "events.jsonl")
	sink := NewJsonlSink(path)

	first := []model.EventRecord{{Seq: 0, EventName: model.EventMint, Decoded: json.RawMessage("null")}}
	second := []model.EventRecord{{Seq: 1, EventName: model.EventBurn, Decoded: json.RawMessage("null")}}
	if err := sink.PutEventBatch(first); err != nil {
		t.Fatalf("first batch: %v", err)
	}
	if err := sink.PutEventBatch(nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	if err := sink.PutEventBatch(second); err != nil {
		t.Fatalf("second batch: %v", err)
	}

	got := readRecords(t, path)
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].EventName != model.EventMint || got[1].EventName != model.EventBurn {
		t.Fatalf("records = %+v", got)
	}
}

func readRecords(t *testing.T, path string) []model.EventRecord {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer file.Close()

	var out []model.EventRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var record model.EventRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		out = append(out, record)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	return out
}
