package dictionary

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/driftlab/trustdebt/internal/taxonomy"
)

func testCats() []taxonomy.Category {
	return []taxonomy.Category{
		{Code: "A", Name: "Measurement"},
		{Code: "B", Name: "Implementation"},
		{Code: "A.1", Name: "Scoring", ParentCode: "A"},
	}
}

func TestNew_RejectsOrphanedCategory(t *testing.T) {
	_, err := New("v1", map[string][]string{
		"score": {"A", "Z.9"},
	}, testCats())
	if err == nil {
		t.Fatal("New() accepted an orphaned category reference")
	}
	if !strings.Contains(err.Error(), "Z.9") {
		t.Errorf("error %q does not name the orphaned code", err)
	}
}

func TestNew_NormalizesAndSorts(t *testing.T) {
	d, err := New("v1", map[string][]string{
		"  Score ": {"A.1", "A", "A.1"},
	}, testCats())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got := d.Categories("SCORE")
	want := []string{"A", "A.1"} // ShortLex, duplicates collapsed
	if len(got) != len(want) {
		t.Fatalf("Categories = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Categories = %v, want %v", got, want)
		}
	}
}

func TestNew_EmptyMappingRejected(t *testing.T) {
	if _, err := New("v1", map[string][]string{"score": {}}, testCats()); err == nil {
		t.Error("New() accepted a keyword with no categories")
	}
	if _, err := New("v1", map[string][]string{"   ": {"A"}}, testCats()); err == nil {
		t.Error("New() accepted an empty keyword")
	}
}

func TestKeywords_Sorted(t *testing.T) {
	d, err := New("v1", map[string][]string{
		"zeta": {"A"}, "alpha": {"B"}, "mid": {"A.1"},
	}, testCats())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	kws := d.Keywords()
	for i := 0; i+1 < len(kws); i++ {
		if kws[i] > kws[i+1] {
			t.Fatalf("Keywords() not sorted: %v", kws)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(dir, "dict.yaml")
		content := "version: \"2024.1\"\nkeywords:\n  score: [A, A.1]\n  build: [B]\n"
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		d, err := Load(path, testCats())
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if d.Version() != "2024.1" {
			t.Errorf("Version = %s, want 2024.1", d.Version())
		}
		if d.Len() != 2 {
			t.Errorf("Len = %d, want 2", d.Len())
		}
	})

	t.Run("missing version", func(t *testing.T) {
		path := filepath.Join(dir, "noversion.yaml")
		if err := os.WriteFile(path, []byte("keywords:\n  score: [A]\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path, testCats()); err == nil {
			t.Error("Load() accepted a file without a version")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(dir, "absent.yaml"), testCats()); err == nil {
			t.Error("Load() succeeded for a missing file")
		}
	})
}

func TestDefault_ValidAgainstDefaultTaxonomy(t *testing.T) {
	d, err := Default(taxonomy.DefaultCategories())
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if d.Len() == 0 {
		t.Fatal("default dictionary is empty")
	}
	if d.Categories("unknown-keyword") != nil {
		t.Error("Categories() returned mappings for an unknown keyword")
	}
}
