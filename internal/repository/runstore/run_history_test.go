package runstore

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tradepulse/backend/internal/domain/reconrun"
)

func newTestRepo(t *testing.T) *RunRepository {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return NewRunRepository(db)
}

func sampleRun(kind string, createdAt time.Time) *reconrun.Run {
	return &reconrun.Run{
		Kind:       kind,
		Source:     "scan",
		WindowDays: 7,
		Rows:       3,
		Partial:    false,
		DurationMS: 120,
		Trigger:    reconrun.TriggerAPI,
		CreatedAt:  createdAt,
	}
}

func TestRunRepositoryCreateAndLatest(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	run := sampleRun(reconrun.KindExpired, base)
	id, err := repo.Create(ctx, run)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if id == 0 || run.ID != id {
		t.Errorf("Create() id = %d, run.ID = %d", id, run.ID)
	}

	later := sampleRun(reconrun.KindExpired, base.Add(time.Hour))
	later.Rows = 5
	later.Partial = true
	later.Trigger = reconrun.TriggerScheduler
	if _, err := repo.Create(ctx, later); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	got, err := repo.Latest(ctx, reconrun.KindExpired)
	if err != nil {
		t.Fatalf("Latest() error: %v", err)
	}
	if got.ID != later.ID {
		t.Errorf("Latest() id = %d, want %d", got.ID, later.ID)
	}
	if got.Rows != 5 || !got.Partial || got.Trigger != reconrun.TriggerScheduler {
		t.Errorf("Latest() = %+v", got)
	}
}

func TestRunRepositoryLatestFiltersByKind(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	expired := sampleRun(reconrun.KindExpired, base)
	if _, err := repo.Create(ctx, expired); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	renewals := sampleRun(reconrun.KindRenewals, base.Add(time.Minute))
	if _, err := repo.Create(ctx, renewals); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	got, err := repo.Latest(ctx, reconrun.KindExpired)
	if err != nil {
		t.Fatalf("Latest() error: %v", err)
	}
	if got.Kind != reconrun.KindExpired {
		t.Errorf("Latest(expired) kind = %q", got.Kind)
	}
}

func TestRunRepositoryLatestEmpty(t *testing.T) {
	repo := newTestRepo(t)

	if _, err := repo.Latest(context.Background(), reconrun.KindExpired); err == nil {
		t.Fatal("Latest() on empty store should error")
	}
}

func TestRunRepositoryList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		run := sampleRun(reconrun.KindExpired, base.Add(time.Duration(i)*time.Minute))
		run.Rows = i
		if _, err := repo.Create(ctx, run); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
	}

	runs, total, err := repo.List(ctx, 2, 0)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	// Newest first
	if runs[0].Rows != 4 || runs[1].Rows != 3 {
		t.Errorf("page 1 rows = [%d, %d], want [4, 3]", runs[0].Rows, runs[1].Rows)
	}

	runs, _, err = repo.List(ctx, 2, 4)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(runs) != 1 || runs[0].Rows != 0 {
		t.Errorf("last page = %+v, want the oldest run", runs)
	}
}

func TestRunRepositoryErrorRun(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	run := &reconrun.Run{
		Kind:       reconrun.KindExpired,
		WindowDays: 7,
		Error:      "upstream timeout",
		Trigger:    reconrun.TriggerAPI,
		CreatedAt:  time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	if _, err := repo.Create(ctx, run); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	got, err := repo.Latest(ctx, reconrun.KindExpired)
	if err != nil {
		t.Fatalf("Latest() error: %v", err)
	}
	if got.Error != "upstream timeout" {
		t.Errorf("error = %q, want upstream timeout", got.Error)
	}
	if got.Source != "" {
		t.Errorf("source = %q, want empty for a failed run", got.Source)
	}
}
