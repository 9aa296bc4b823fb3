package voyagestore

import (
	"context"
	"testing"
	"time"

	"github.com/oceanvolt/voyage-optimizer/voyage"
)

func TestSaveAndLoadLatestRun(t *testing.T) {
	store, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	result := &voyage.OptimizationResult{
		TotalCostGBP: 3060,
		TotalTimeHr:  16,
		FinishTimeHr: 16,
		Steps: []voyage.Step{
			{PortName: "B", Operation: voyage.OpSwap, ContainersSwapped: 4},
		},
	}

	solvedAt := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	if err := store.SaveRun(ctx, "run-1", solvedAt, result); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, runID, gotSolvedAt, err := store.LoadLatestRun(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected a loaded run, got nil")
	}
	if runID != "run-1" {
		t.Errorf("expected run id 'run-1', got %q", runID)
	}
	if !gotSolvedAt.Equal(solvedAt) {
		t.Errorf("expected solved_at %v, got %v", solvedAt, gotSolvedAt)
	}
	if loaded.TotalCostGBP != result.TotalCostGBP {
		t.Errorf("expected total cost %v, got %v", result.TotalCostGBP, loaded.TotalCostGBP)
	}
	if len(loaded.Steps) != 1 || loaded.Steps[0].ContainersSwapped != 4 {
		t.Errorf("expected 1 step with 4 containers swapped, got %+v", loaded.Steps)
	}
}

func TestSaveRunUpsertsByRunID(t *testing.T) {
	store, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	first := &voyage.OptimizationResult{TotalCostGBP: 100}
	second := &voyage.OptimizationResult{TotalCostGBP: 200}
	solvedAt := time.Now()

	if err := store.SaveRun(ctx, "run-1", solvedAt, first); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if err := store.SaveRun(ctx, "run-1", solvedAt, second); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	loaded, _, _, err := store.LoadLatestRun(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.TotalCostGBP != 200 {
		t.Errorf("expected the second save to replace the first, got cost %v", loaded.TotalCostGBP)
	}
}
