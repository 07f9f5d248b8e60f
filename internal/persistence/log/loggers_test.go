package log

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"

	"swarmsearch.ai/internal/sim/swarm"
)

func TestTickLogger_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := NewTickLogger(dir)

	want := []swarm.TickLogEntry{
		{Tick: 0, Digest: "aaa", Located: 0},
		{Tick: 1, Digest: "bbb", Located: 1, Ratio: 2.5, RatioValid: true},
		{Tick: 2, Digest: "ccc", Located: 3, Ratio: 1.8, RatioValid: true},
	}
	for _, e := range want {
		if err := l.WriteTick(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, err := os.ReadDir(filepath.Join(dir, "events"))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("want one log file, got %d", len(files))
	}
	name := files[0].Name()
	if !strings.HasPrefix(name, "events-") || !strings.HasSuffix(name, ".jsonl.zst") {
		t.Fatalf("unexpected file name: %s", name)
	}

	f, err := os.Open(filepath.Join(dir, "events", name))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd: %v", err)
	}
	defer dec.Close()

	var got []swarm.TickLogEntry
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var e swarm.TickLogEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		got = append(got, e)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(got) != len(want) {
		t.Fatalf("want %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestJSONLZstdWriter_CloseWithoutWrites(t *testing.T) {
	w := NewJSONLZstdWriter(t.TempDir(), "events")
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
