package store

import (
	"testing"

	"github.com/google/uuid"

	"ganbara/internal/models"
)

func TestMenuStoreCreateDefaults(t *testing.T) {
	db := testDB(t)
	s := NewMenuStore(db)

	cat := "test-postres-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanMenu(t, db, cat) })

	created, err := s.Create(&models.MenuItem{
		Title:       models.Localized{ES: "Tarta de queso"},
		Category:    cat,
		Price:       4.5,
		IsAvailable: true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if created.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}
	if created.Title.EU != "Tarta de queso" {
		t.Errorf("eu title fallback: got %q, want es value", created.Title.EU)
	}
	if created.DisplayOrder == 0 {
		t.Error("expected server-assigned display order")
	}
	if created.MediaPrice != nil {
		t.Errorf("media price: got %v, want nil", *created.MediaPrice)
	}
	if created.UpdatedAt.IsZero() {
		t.Error("expected server-assigned updated_at")
	}
}

func TestMenuStoreCreateRequiresTitle(t *testing.T) {
	db := testDB(t)
	s := NewMenuStore(db)

	_, err := s.Create(&models.MenuItem{Category: "postres", Price: 3})
	if err != ErrInvalidItem {
		t.Fatalf("expected ErrInvalidItem, got %v", err)
	}
}

func TestMenuStoreCategoryNormalization(t *testing.T) {
	db := testDB(t)
	s := NewMenuStore(db)
	t.Cleanup(func() { cleanMenu(t, db, "sin-categoria") })

	created, err := s.Create(&models.MenuItem{
		Title:    models.Localized{ES: "Plato suelto"},
		Category: "   ",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Category != models.DefaultCategory {
		t.Errorf("category: got %q, want %q", created.Category, models.DefaultCategory)
	}

	db.Exec("DELETE FROM menu_items WHERE id = $1", created.ID)
}

func TestMenuStoreUpdatePreservesUnchangedFields(t *testing.T) {
	db := testDB(t)
	s := NewMenuStore(db)

	cat := "test-raciones-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanMenu(t, db, cat) })

	created, err := s.Create(&models.MenuItem{
		Title:    models.Localized{ES: "Calamares"},
		Category: cat,
		Price:    12,
		Tags:     []string{"fritos"},
		Image:    models.ImageRef{Desktop: "images/calamares.jpg"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Merge-then-update the way the handler does: load, change a field.
	created.Price = 13.5
	updated, err := s.Update(created)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if updated.Price != 13.5 {
		t.Errorf("price: got %v, want 13.5", updated.Price)
	}
	if updated.DisplayOrder != created.DisplayOrder {
		t.Error("display order must survive an update")
	}
	if len(updated.Tags) != 1 || updated.Tags[0] != "fritos" {
		t.Errorf("tags: got %v, want [fritos]", updated.Tags)
	}
	if updated.Image.Mobile != "images/calamares.jpg" {
		t.Errorf("mobile image fallback: got %q", updated.Image.Mobile)
	}
}

func TestMenuStoreListAllOrdering(t *testing.T) {
	db := testDB(t)
	s := NewMenuStore(db)

	cat := "test-orden-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanMenu(t, db, cat) })

	// Insert out of order with explicit display orders.
	for _, n := range []struct {
		title string
		order int64
	}{
		{"Tercero", 30}, {"Primero", 10}, {"Segundo", 20},
	} {
		if _, err := s.Create(&models.MenuItem{
			Title:        models.Localized{ES: n.title},
			Category:     cat,
			DisplayOrder: n.order,
		}); err != nil {
			t.Fatalf("Create %s: %v", n.title, err)
		}
	}

	items, err := s.ListAll()
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}

	var got []string
	for _, it := range items {
		if it.Category == cat {
			got = append(got, it.Title.ES)
		}
	}
	want := []string{"Primero", "Segundo", "Tercero"}
	if len(got) != len(want) {
		t.Fatalf("items in category: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMenuStoreImportBatch(t *testing.T) {
	db := testDB(t)
	s := NewMenuStore(db)

	cat := "test-import-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanMenu(t, db, cat) })

	count, err := s.ImportBatch([]models.MenuItem{
		{Title: models.Localized{ES: "Tortilla"}, Category: cat, IsAvailable: true},
		{Title: models.Localized{ES: "Croquetas"}, Category: cat, IsAvailable: true},
	})
	if err != nil {
		t.Fatalf("ImportBatch: %v", err)
	}
	if count != 2 {
		t.Errorf("count: got %d, want 2", count)
	}

	items, err := s.ListAll()
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	var got []string
	for _, it := range items {
		if it.Category == cat {
			got = append(got, it.Title.ES)
		}
	}
	// File order preserved via baseTime+index display orders.
	if len(got) != 2 || got[0] != "Tortilla" || got[1] != "Croquetas" {
		t.Errorf("import order: got %v", got)
	}
}

func TestMenuStoreDelete(t *testing.T) {
	db := testDB(t)
	s := NewMenuStore(db)

	cat := "test-borrar-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanMenu(t, db, cat) })

	created, err := s.Create(&models.MenuItem{
		Title:    models.Localized{ES: "Efímero"},
		Category: cat,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	deleted, err := s.Delete(created.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted == nil || deleted.ID != created.ID {
		t.Fatal("expected the deleted row back")
	}

	again, err := s.Delete(created.ID)
	if err != nil {
		t.Fatalf("Delete (second): %v", err)
	}
	if again != nil {
		t.Error("second delete should return nil")
	}
}
