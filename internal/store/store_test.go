package store

import (
	"testing"

	"github.com/driftlab/trustdebt/internal/config"
	"github.com/driftlab/trustdebt/internal/index"
	"github.com/driftlab/trustdebt/internal/matrix"
	"github.com/driftlab/trustdebt/internal/taxonomy"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRunLifecycle(t *testing.T) {
	s := newTestStore(t)

	if err := s.CreateRun("run-1"); err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}

	r, err := s.RunByID("run-1")
	if err != nil {
		t.Fatalf("RunByID() error = %v", err)
	}
	if r.Status != "running" {
		t.Errorf("status = %s, want running", r.Status)
	}
	if r.FinishedAt != nil {
		t.Error("fresh run already has finished_at set")
	}

	if err := s.FinishRun("run-1", "pass", 0.72, "B-", 0.81); err != nil {
		t.Fatalf("FinishRun() error = %v", err)
	}
	r, err = s.RunByID("run-1")
	if err != nil {
		t.Fatalf("RunByID() after finish error = %v", err)
	}
	if r.Status != "pass" || r.SovereigntyGrade != "B-" {
		t.Errorf("finished run = %+v", r)
	}
	if r.FinishedAt == nil {
		t.Error("finished run missing finished_at")
	}
}

func TestFinishRun_UnknownRun(t *testing.T) {
	s := newTestStore(t)
	if err := s.FinishRun("missing", "pass", 0, "", 0); err == nil {
		t.Error("FinishRun() accepted an unknown run id")
	}
}

func TestSaveCategories_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateRun("run-1"); err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}

	cats := taxonomy.DefaultCategories()
	if err := s.SaveCategories("run-1", cats); err != nil {
		t.Fatalf("SaveCategories() error = %v", err)
	}

	got, err := s.CategoryByCode("run-1", "A.1")
	if err != nil {
		t.Fatalf("CategoryByCode() error = %v", err)
	}
	if got.ParentCode != "A" || got.Position == 0 {
		t.Errorf("stored category = %+v", got)
	}

	if _, err := s.CategoryByCode("run-1", "Z.9"); err == nil {
		t.Error("CategoryByCode() found a category that was never stored")
	}
}

func TestRecordMappings_ScopedLookups(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateRun("run-1"); err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}

	mappings := []index.KeywordMapping{
		{Keyword: "score", CategoryCode: "A", IntentCount: 3, RealityCount: 1, TotalCount: 4},
		{Keyword: "score", CategoryCode: "A.1", IntentCount: 3, RealityCount: 1, TotalCount: 4},
		{Keyword: "deploy", CategoryCode: "E.1", IntentCount: 0, RealityCount: 2, TotalCount: 2},
	}
	if err := s.RecordMappings("run-1", mappings); err != nil {
		t.Fatalf("RecordMappings() error = %v", err)
	}

	byKeyword, err := s.MappingsByKeyword("run-1", "score")
	if err != nil {
		t.Fatalf("MappingsByKeyword() error = %v", err)
	}
	if len(byKeyword) != 2 {
		t.Fatalf("keyword rows = %d, want 2", len(byKeyword))
	}
	if byKeyword[0].CategoryCode != "A" || byKeyword[1].CategoryCode != "A.1" {
		t.Errorf("keyword rows out of order: %+v", byKeyword)
	}

	byCategory, err := s.MappingsByCategory("run-1", "E.1")
	if err != nil {
		t.Fatalf("MappingsByCategory() error = %v", err)
	}
	if len(byCategory) != 1 || byCategory[0].Keyword != "deploy" {
		t.Errorf("category rows = %+v", byCategory)
	}
}

func TestRecordMappings_ReplacesPriorRows(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateRun("run-1"); err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}

	first := []index.KeywordMapping{{Keyword: "score", CategoryCode: "A", TotalCount: 4}}
	if err := s.RecordMappings("run-1", first); err != nil {
		t.Fatalf("RecordMappings() first error = %v", err)
	}
	second := []index.KeywordMapping{{Keyword: "score", CategoryCode: "A", TotalCount: 9}}
	if err := s.RecordMappings("run-1", second); err != nil {
		t.Fatalf("RecordMappings() second error = %v", err)
	}

	got, err := s.MappingsByKeyword("run-1", "score")
	if err != nil {
		t.Fatalf("MappingsByKeyword() error = %v", err)
	}
	if len(got) != 1 || got[0].TotalCount != 9 {
		t.Errorf("rows after re-record = %+v, want single row with total 9", got)
	}
}

func TestSaveMatrix_RowLookup(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateRun("run-1"); err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}

	cats := taxonomy.DefaultCategories()
	m, err := matrix.Build(cats, taxonomy.UnitTotals(cats), config.DefaultConfig().Matrix)
	if err != nil {
		t.Fatalf("matrix.Build() error = %v", err)
	}
	if err := s.SaveMatrix("run-1", m); err != nil {
		t.Fatalf("SaveMatrix() error = %v", err)
	}

	cells, err := s.CellsForRow("run-1", 3)
	if err != nil {
		t.Fatalf("CellsForRow() error = %v", err)
	}
	if len(cells) != m.Dimensions {
		t.Fatalf("row cells = %d, want %d", len(cells), m.Dimensions)
	}
	for i, c := range cells {
		if c.Col != i+1 {
			t.Fatalf("cell %d has col %d, want %d", i, c.Col, i+1)
		}
		if c.Triangle != matrix.TriangleFor(c.Row, c.Col) {
			t.Fatalf("cell (%d,%d) triangle = %s", c.Row, c.Col, c.Triangle)
		}
	}
}

func TestRuns_MostRecentFirst(t *testing.T) {
	s := newTestStore(t)
	for _, id := range []string{"run-1", "run-2"} {
		if err := s.CreateRun(id); err != nil {
			t.Fatalf("CreateRun(%s) error = %v", id, err)
		}
	}

	runs, err := s.Runs(10)
	if err != nil {
		t.Fatalf("Runs() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(runs))
	}
}
