package models

import (
	"encoding/json"
	"testing"
)

func TestProductRelation_Shapes(t *testing.T) {
	cases := map[string]bool{
		`{"id": "aa000000-0000-4000-8000-000000000001", "name": "Milk"}`:   true,
		`[{"id": "aa000000-0000-4000-8000-000000000001", "name": "Milk"}]`: true,
		`[]`:                  false,
		`null`:                false,
		`{}`:                  false,
		`[{"name": "Ghost"}]`: false,
	}

	for input, present := range cases {
		var rel ProductRelation
		if err := json.Unmarshal([]byte(input), &rel); err != nil {
			t.Fatalf("%s: unexpected error: %v", input, err)
		}
		if present && (rel.Ref == nil || rel.Ref.Name != "Milk") {
			t.Fatalf("%s: expected product, got %+v", input, rel.Ref)
		}
		if !present && rel.Ref != nil {
			t.Fatalf("%s: expected nil product, got %+v", input, rel.Ref)
		}
	}
}

func TestProductRelation_RejectsMultiple(t *testing.T) {
	var rel ProductRelation
	input := `[{"id": "aa000000-0000-4000-8000-000000000001"}, {"id": "aa000000-0000-4000-8000-000000000002"}]`
	if err := json.Unmarshal([]byte(input), &rel); err == nil {
		t.Fatalf("expected error for multi-element relation")
	}
}

func TestProductRelation_InsideStruct(t *testing.T) {
	var rec struct {
		Product ProductRelation `json:"products"`
	}
	if err := json.Unmarshal([]byte(`{"products": null}`), &rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Product.Ref != nil {
		t.Fatalf("expected nil ref")
	}

	out, err := json.Marshal(ProductRelation{})
	if err != nil || string(out) != "null" {
		t.Fatalf("expected null, got %s err=%v", out, err)
	}
}

func TestProductRef_Thumbnail(t *testing.T) {
	var empty *ProductRef
	if empty.Thumbnail() != "" {
		t.Fatalf("nil ref must have empty thumbnail")
	}
	ref := &ProductRef{Images: []string{"a.png", "b.png"}}
	if ref.Thumbnail() != "a.png" {
		t.Fatalf("expected first image, got %s", ref.Thumbnail())
	}
}
