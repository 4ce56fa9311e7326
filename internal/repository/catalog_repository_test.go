package repository_test

import (
	"testing"

	"exam_review_backend/internal/repository"

	"github.com/spf13/afero"
)

func newCatalog(t *testing.T) *repository.CatalogRepository {
	t.Helper()
	fs := afero.NewMemMapFs()
	categories := `[{"id":"legal","name":"Legal Aspects of Education"}]`
	questions := `[
		{"id":"legal1","categoryId":"legal","question":"Which law governs teacher tenure?","options":["RA 4670","RA 9155"],"correctOptionIndex":0},
		{"id":"legal2","categoryId":"legal","question":"What is the basic education act?","options":["RA 9155","RA 10533"],"correctOptionIndex":1}
	]`
	if err := afero.WriteFile(fs, "data/categories.json", []byte(categories), 0644); err != nil {
		t.Fatalf("fixture failed: %v", err)
	}
	if err := afero.WriteFile(fs, "data/questions.json", []byte(questions), 0644); err != nil {
		t.Fatalf("fixture failed: %v", err)
	}
	return repository.NewCatalogRepository(fs, "data")
}

func TestCatalogLookups(t *testing.T) {
	catalog := newCatalog(t)

	if got := len(catalog.Categories()); got != 1 {
		t.Fatalf("expected 1 category, got %d", got)
	}
	if got := len(catalog.QuestionsByCategory("legal")); got != 2 {
		t.Fatalf("expected 2 legal questions, got %d", got)
	}
	if got := len(catalog.QuestionsByCategory("nowhere")); got != 0 {
		t.Fatalf("unknown category must yield empty slice, got %d", got)
	}

	q, ok := catalog.QuestionByID("legal1")
	if !ok || q.CorrectOptionIndex != 0 {
		t.Fatalf("lookup by id failed: %+v ok=%v", q, ok)
	}
	if _, ok := catalog.QuestionByID("ghost"); ok {
		t.Fatal("unknown question id must report not found")
	}

	if name := catalog.CategoryName("legal"); name != "Legal Aspects of Education" {
		t.Fatalf("unexpected name %q", name)
	}
	if name := catalog.CategoryName("ghost"); name != "ghost" {
		t.Fatalf("unknown category must fall back to id, got %q", name)
	}
}

func TestCatalogToleratesMissingFiles(t *testing.T) {
	catalog := repository.NewCatalogRepository(afero.NewMemMapFs(), "data")
	if got := len(catalog.Categories()); got != 0 {
		t.Fatalf("missing files must yield empty catalogs, got %d", got)
	}

	nilCatalog := repository.NewCatalogRepository(nil, "data")
	if got := len(nilCatalog.Categories()); got != 0 {
		t.Fatalf("nil filesystem must yield empty catalogs, got %d", got)
	}
}
