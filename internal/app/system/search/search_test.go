package search

import (
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"spaces only", "   ", ""},
		{"trims", "  dune  ", "dune"},
		{"collapses inner whitespace", "the \t  hobbit", "the hobbit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClean_Truncates(t *testing.T) {
	long := strings.Repeat("é", MaxQueryLen+20)
	got := Clean(long)
	if n := len([]rune(got)); n != MaxQueryLen {
		t.Errorf("expected %d runes, got %d", MaxQueryLen, n)
	}
}

func TestAnyField_Empty(t *testing.T) {
	if f := AnyField("  ", "title"); f != nil {
		t.Errorf("expected nil filter for blank query, got %v", f)
	}
	if f := AnyField("dune"); f != nil {
		t.Errorf("expected nil filter with no fields, got %v", f)
	}
}

func TestAnyField_EscapesRegex(t *testing.T) {
	f := AnyField("c++ (2nd ed.)", "title", "author")
	or, ok := f["$or"].(bson.A)
	if !ok {
		t.Fatalf("expected $or array, got %T", f["$or"])
	}
	if len(or) != 2 {
		t.Fatalf("expected 2 clauses, got %d", len(or))
	}
	clause := or[0].(bson.M)
	re, ok := clause["title"].(primitive.Regex)
	if !ok {
		t.Fatalf("expected regex on title, got %T", clause["title"])
	}
	if re.Pattern != `c\+\+ \(2nd ed\.\)` {
		t.Errorf("unexpected pattern %q", re.Pattern)
	}
	if re.Options != "i" {
		t.Errorf("expected case-insensitive option, got %q", re.Options)
	}
}
