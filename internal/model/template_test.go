package model

import (
	"testing"
)

func TestSelectTemplateKeywords(t *testing.T) {
	tests := []struct {
		filename string
		want     TemplateID
	}{
		{"demo_engine.png", TemplateEngine},
		{"MOTOR_photo.JPG", TemplateEngine},
		{"transmission.jpg", TemplateTransmission},
		{"old_gearbox.jpeg", TemplateTransmission},
		{"Suspension-front.png", TemplateSuspension},
		{"strut.png", TemplateSuspension},
		{"chair.jpg", TemplateChair},
		{"bookshelf.png", TemplateShelf},
		{"table.png", TemplateTable},
		{"IMG_0042.jpg", TemplateTable},
		{"", TemplateTable},
	}
	for _, tt := range tests {
		got := SelectTemplate(tt.filename)
		if got.Template != tt.want {
			t.Errorf("SelectTemplate(%q) = %s, want %s", tt.filename, got.Template, tt.want)
		}
	}
}

func TestSelectTemplatePriority(t *testing.T) {
	// engine beats chair, transmission beats shelf, suspension beats chair
	tests := []struct {
		filename string
		want     TemplateID
	}{
		{"chair_with_motor.png", TemplateEngine},
		{"shelf_gearbox.png", TemplateTransmission},
		{"strut_chair.png", TemplateSuspension},
		{"chair_shelf.png", TemplateChair},
		{"engine_transmission.png", TemplateEngine},
	}
	for _, tt := range tests {
		if got := MatchTemplate(tt.filename); got != tt.want {
			t.Errorf("MatchTemplate(%q) = %s, want %s", tt.filename, got, tt.want)
		}
	}
}

func TestSelectTemplateUsesBaseNameOnly(t *testing.T) {
	got := SelectTemplate("/data/engine_photos/IMG_1.png")
	if got.Template != TemplateTable {
		t.Errorf("directory keyword should be ignored, got %s", got.Template)
	}
}

func TestSelectTemplateDeterministic(t *testing.T) {
	for _, name := range []string{"demo_engine.png", "random.jpg", "Chair.PNG"} {
		first := SelectTemplate(name)
		for i := 0; i < 5; i++ {
			again := SelectTemplate(name)
			if again.Template != first.Template || len(again.Items) != len(first.Items) {
				t.Fatalf("SelectTemplate(%q) not deterministic", name)
			}
		}
	}
}

func TestSelectTemplateReturnsClone(t *testing.T) {
	a := SelectTemplate("table.png")
	a.Items[0].Quantity = 99
	a.Items[0].Subtotal = 1234

	b := SelectTemplate("table.png")
	if b.Items[0].Quantity != 1 {
		t.Errorf("catalog was mutated: quantity %d", b.Items[0].Quantity)
	}
	if b.Items[0].Subtotal != 0 {
		t.Errorf("catalog carries subtotal %.2f", b.Items[0].Subtotal)
	}
}

func TestGetTemplateFallsBackToDefault(t *testing.T) {
	got := GetTemplate("spaceship")
	if got.Template != TemplateTable {
		t.Errorf("expected table fallback, got %s", got.Template)
	}
	if _, ok := LookupTemplate("spaceship"); ok {
		t.Error("expected LookupTemplate to report a missing id")
	}
}

func TestTemplatesCatalog(t *testing.T) {
	all := Templates()
	if len(all) != 6 {
		t.Fatalf("expected 6 templates, got %d", len(all))
	}
	if all[len(all)-1].Template != DefaultTemplate {
		t.Errorf("default template should be listed last, got %s", all[len(all)-1].Template)
	}
	for _, b := range all {
		if len(b.Items) != 10 {
			t.Errorf("template %s has %d items, want 10", b.Template, len(b.Items))
		}
		for i, it := range b.Items {
			if it.Level != 0 {
				t.Errorf("%s item %d has level %d", b.Template, i, it.Level)
			}
			if it.Quantity <= 0 || it.UnitPrice <= 0 {
				t.Errorf("%s item %s has qty=%d price=%.2f", b.Template, it.ItemNo, it.Quantity, it.UnitPrice)
			}
			if it.Subtotal != 0 {
				t.Errorf("%s item %s carries a subtotal", b.Template, it.ItemNo)
			}
		}
	}
}

func TestKeywords(t *testing.T) {
	kw := Keywords(TemplateEngine)
	if len(kw) != 2 || kw[0] != "engine" || kw[1] != "motor" {
		t.Errorf("unexpected engine keywords %v", kw)
	}
	if Keywords(TemplateTable) != nil {
		t.Error("default template should have no keywords")
	}
}

func TestExpectedCategory(t *testing.T) {
	if ExpectedCategory(TemplateEngine) != CategoryMechanical {
		t.Error("engine should expect a mechanical photo")
	}
	if ExpectedCategory(TemplateShelf) != CategoryWood {
		t.Error("shelf should expect a wood photo")
	}
}
