package faq

import "testing"

func TestLookup(t *testing.T) {
	entry, ok := Lookup("calorie")
	if !ok {
		t.Fatal("expected calorie entry to exist")
	}
	if entry.Answer == "" {
		t.Error("entry should carry an answer")
	}
	if _, ok := Lookup("nonexistent"); ok {
		t.Error("unknown id should not resolve")
	}
}

func TestSearch(t *testing.T) {
	if results := Search("calorie"); len(results) != 1 || results[0].ID != "calorie" {
		t.Errorf("keyword calorie should match the calorie entry, got %v", results)
	}
	if results := Search("ACCURACY"); len(results) != 1 || results[0].ID != "accuracy" {
		t.Error("search should be case-insensitive")
	}
	if results := Search("zebra"); len(results) != 0 {
		t.Errorf("unrelated keyword should match nothing, got %v", results)
	}
	if results := Search("   "); len(results) != 0 {
		t.Error("blank keyword should match nothing")
	}
}

func TestAllPreservesMenuOrder(t *testing.T) {
	all := All()
	if len(all) < 2 {
		t.Fatalf("expected at least two entries, got %d", len(all))
	}
	if all[0].ID != "calorie" || all[1].ID != "accuracy" {
		t.Error("menu order changed")
	}
}
