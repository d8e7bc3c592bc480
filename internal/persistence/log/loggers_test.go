package log

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func readEntries(t *testing.T, dir string) []TickLogEntry {
	t.Helper()
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}

	var out []TickLogEntry
	for _, e := range ents {
		if !strings.HasSuffix(e.Name(), ".jsonl.zst") {
			continue
		}
		f, err := os.Open(filepath.Join(dir, e.Name()))
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		dec, err := zstd.NewReader(f)
		if err != nil {
			t.Fatalf("zstd: %v", err)
		}
		sc := bufio.NewScanner(dec)
		for sc.Scan() {
			var entry TickLogEntry
			if err := json.Unmarshal(sc.Bytes(), &entry); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			out = append(out, entry)
		}
		if err := sc.Err(); err != nil {
			t.Fatalf("scan: %v", err)
		}
		dec.Close()
		_ = f.Close()
	}
	return out
}

func TestTickLogger_WriteReadRoundTrip(t *testing.T) {
	runDir := t.TempDir()
	l := NewTickLogger(runDir)

	want := []TickLogEntry{
		{Tick: 1, Digest: "aa", Agents: 0, Events: []RecordedEvent{
			{Kind: "CITY_ADDED", City: "Paris"},
			{Kind: "UNIT_ADDED", EntityID: 0, EntityType: "Home"},
		}},
		{Tick: 2, Digest: "bb", Agents: 1, Events: []RecordedEvent{
			{Kind: "AGENT_ADDED", EntityID: 0, EntityType: "People"},
		}},
		{Tick: 3, Digest: "cc", Agents: 1},
	}
	for _, e := range want {
		if err := l.WriteTick(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got := readEntries(t, filepath.Join(runDir, "ticks"))
	if len(got) != len(want) {
		t.Fatalf("entries: got %d want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Tick != want[i].Tick || got[i].Digest != want[i].Digest {
			t.Fatalf("entry %d: got %+v want %+v", i, got[i], want[i])
		}
		if len(got[i].Events) != len(want[i].Events) {
			t.Fatalf("entry %d events: got %d want %d", i, len(got[i].Events), len(want[i].Events))
		}
	}
	if got[0].Events[0].City != "Paris" {
		t.Fatalf("event fields must survive the round trip")
	}
}
