package registry

import (
	"path/filepath"
	"testing"
)

func TestPutGetDelete(t *testing.T) {
	reg, err := Open(filepath.Join(t.TempDir(), "registry.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reg.Close()

	rec := Record{ChannelName: "test_controller", PID: 1234, OpenedAt: 42}
	if err := reg.Put(rec); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, found, err := reg.Get("test_controller")
	if err != nil || !found {
		t.Fatalf("Get: found=%v err=%v", found, err)
	}
	if got != rec {
		t.Errorf("Get returned %+v, want %+v", got, rec)
	}

	if err := reg.Delete("test_controller"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found, err := reg.Get("test_controller"); err != nil || found {
		t.Fatalf("expected entry gone after Delete, found=%v err=%v", found, err)
	}

	// Deleting an absent entry must not error -- purge/close are idempotent.
	if err := reg.Delete("never-existed"); err != nil {
		t.Errorf("Delete of absent entry returned error: %v", err)
	}
}

func TestList(t *testing.T) {
	reg, err := Open(filepath.Join(t.TempDir(), "registry.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reg.Close()

	want := []Record{
		{ChannelName: "a", PID: 1, OpenedAt: 1},
		{ChannelName: "b", PID: 2, OpenedAt: 2},
	}
	for _, rec := range want {
		if err := reg.Put(rec); err != nil {
			t.Fatalf("Put(%+v): %v", rec, err)
		}
	}

	got, err := reg.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("List returned %d records, want %d", len(got), len(want))
	}
}
