package indexdb

import (
	"path/filepath"
	"testing"
)

func TestSQLiteIndex_RecordAndGetRun(t *testing.T) {
	idx, err := OpenSQLite(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer idx.Close()

	run := RunRow{
		RunID:          "run-1",
		Seed:           1337,
		GridW:          20,
		GridH:          20,
		Agents:         5,
		Targets:        3,
		ByzantineIndex: 0,
		Ticks:          100,
		Located:        3,
		Ratio:          2.4,
		RatioValid:     true,
	}
	finds := []TargetFindRow{
		{RunID: "run-1", TargetID: 0, Tick: 12, X: 2, Y: 2},
		{RunID: "run-1", TargetID: 2, Tick: 31, X: 18, Y: 4},
	}
	if err := idx.RecordRun(run, finds); err != nil {
		t.Fatalf("record: %v", err)
	}

	got, err := idx.GetRun("run-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Seed != 1337 || got.Ticks != 100 || got.Located != 3 {
		t.Fatalf("row: %+v", got)
	}
	if !got.RatioValid || got.Ratio != 2.4 {
		t.Fatalf("ratio lost: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Fatalf("created_at not stored")
	}

	fs, err := idx.ListFinds("run-1")
	if err != nil {
		t.Fatalf("list finds: %v", err)
	}
	if len(fs) != 2 || fs[0].TargetID != 0 || fs[1].TargetID != 2 {
		t.Fatalf("finds: %+v", fs)
	}
	if fs[1].Tick != 31 || fs[1].X != 18 || fs[1].Y != 4 {
		t.Fatalf("find row: %+v", fs[1])
	}
}

func TestSQLiteIndex_UndefinedRatioStoresNull(t *testing.T) {
	idx, err := OpenSQLite(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer idx.Close()

	run := RunRow{RunID: "run-2", Seed: 1, GridW: 20, GridH: 20, Agents: 5, Targets: 3, Ticks: 100}
	if err := idx.RecordRun(run, nil); err != nil {
		t.Fatalf("record: %v", err)
	}

	got, err := idx.GetRun("run-2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.RatioValid {
		t.Fatalf("undefined ratio came back defined: %+v", got)
	}
}

func TestSQLiteIndex_GetMissingRun(t *testing.T) {
	idx, err := OpenSQLite(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer idx.Close()

	if _, err := idx.GetRun("nope"); err == nil {
		t.Fatalf("missing run returned without error")
	}
}
