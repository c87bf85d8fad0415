package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"ifad/internal/infra/persistence/memory"
	"ifad/pkg/gaf"
	"ifad/pkg/runs"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.db")
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store, path
}

func recordRun(t *testing.T, store *Store) runs.FilterRun {
	t.Helper()
	var created runs.FilterRun
	err := store.RunInTransaction(context.Background(), func(tx memory.Transaction) error {
		var err error
		created, err = tx.CreateRun(runs.FilterRun{
			Source:          runs.SourceAPI,
			Mode:            gaf.ModeIntersection,
			Segments:        []gaf.Segment{{Aspect: gaf.AspectProcess, Status: gaf.StatusOther}},
			Filter:          gaf.GeneFilterAll,
			Format:          runs.FormatJSON,
			GeneCount:       12,
			AnnotationCount: 40,
		})
		return err
	})
	if err != nil {
		t.Fatalf("record run: %v", err)
	}
	return created
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	store, path := newTestStore(t)
	created := recordRun(t, store)

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, ok := reopened.GetRun(created.ID)
	if !ok {
		t.Fatal("run missing after reopen")
	}
	if got.Mode != gaf.ModeIntersection || got.GeneCount != 12 {
		t.Fatalf("hydrated run = %+v", got)
	}
	if len(got.Segments) != 1 || got.Segments[0].Status != gaf.StatusOther {
		t.Fatalf("hydrated segments = %v", got.Segments)
	}
}

func TestStore_DeletePersists(t *testing.T) {
	store, path := newTestStore(t)
	created := recordRun(t, store)

	err := store.RunInTransaction(context.Background(), func(tx memory.Transaction) error {
		return tx.DeleteRun(created.ID)
	})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if _, ok := reopened.GetRun(created.ID); ok {
		t.Fatal("deleted run survived reopen")
	}
}

func TestStore_FailedTransactionWritesNothing(t *testing.T) {
	store, path := newTestStore(t)

	sentinel := context.Canceled
	err := store.RunInTransaction(context.Background(), func(tx memory.Transaction) error {
		if _, err := tx.CreateRun(runs.FilterRun{Source: runs.SourceCLI}); err != nil {
			return err
		}
		return sentinel
	})
	if err == nil {
		t.Fatal("expected transaction error")
	}

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := reopened.ListRuns(); len(got) != 0 {
		t.Fatalf("failed transaction persisted %d runs", len(got))
	}
}

func TestStore_DefaultsAndAccessors(t *testing.T) {
	store, path := newTestStore(t)
	if store.Path() != path {
		t.Fatalf("path = %q, want %q", store.Path(), path)
	}
	if store.DB() == nil {
		t.Fatal("expected accessible db handle")
	}
}
