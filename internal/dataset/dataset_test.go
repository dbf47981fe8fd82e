package dataset

import (
	"testing"
)

func TestNew_PadsShortRows(t *testing.T) {
	d, err := New([]string{"a", "b", "c"}, [][]string{
		{"1", "2", "3"},
		{"4"},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if got, _ := d.Value(1, "b"); got != "" {
		t.Errorf("Value(1, b) = %q, want empty", got)
	}
	if !d.IsMissing(1, "c") {
		t.Error("IsMissing(1, c) = false, want true")
	}
	if d.IsMissing(0, "c") {
		t.Error("IsMissing(0, c) = true, want false")
	}
}

func TestNew_RejectsDuplicateColumns(t *testing.T) {
	if _, err := New([]string{"id", "id"}, nil); err == nil {
		t.Fatal("New() with duplicate columns: expected error")
	}
}

func TestNew_RejectsEmptyColumnName(t *testing.T) {
	if _, err := New([]string{"id", "  "}, nil); err == nil {
		t.Fatal("New() with blank column name: expected error")
	}
}

func TestMissingIn(t *testing.T) {
	d, err := New([]string{"key"}, [][]string{{"A"}, {""}, {"B"}, {"NaN"}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got := d.MissingIn("key")
	want := []int{1, 3}
	if len(got) != len(want) {
		t.Fatalf("MissingIn = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("MissingIn[%d] = %d, want %d", i, got[i], want[i])
		}
	}

	if d.MissingIn("absent") != nil {
		t.Error("MissingIn(absent) should be nil")
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims whitespace", "  hello  ", "hello"},
		{"excel formula prefix", `="0042"`, "0042"},
		{"bare equals prefix", "=A", "A"},
		{"surrounding quotes", `"quoted"`, "quoted"},
		{"collapses inner whitespace", "a   b\tc", "a b c"},
		{"nan marker", "NaN", ""},
		{"none marker", "None", ""},
		{"null marker", "null", ""},
		{"na marker", "#N/A", ""},
		{"plain value untouched", "Forma A", "Forma A"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanCell(tt.input); got != tt.want {
				t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseCSV(t *testing.T) {
	data := []byte("form,item_id,key\nA,1,X\nA,2,Y\n\n")

	d, err := ParseCSV(data)
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}

	if len(d.Columns) != 3 {
		t.Fatalf("columns = %d, want 3", len(d.Columns))
	}
	if d.Len() != 2 {
		t.Errorf("rows = %d, want 2 (trailing empty row dropped)", d.Len())
	}
	if v, _ := d.Value(1, "key"); v != "Y" {
		t.Errorf("Value(1, key) = %q, want Y", v)
	}
}

func TestParseCSV_SemicolonDelimiter(t *testing.T) {
	data := []byte("form;item_id\nA;1\nB;2\n")

	d, err := ParseCSV(data)
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if len(d.Columns) != 2 {
		t.Fatalf("columns = %v, want [form item_id]", d.Columns)
	}
	if v, _ := d.Value(0, "form"); v != "A" {
		t.Errorf("Value(0, form) = %q, want A", v)
	}
}

func TestParseCSV_SkipsLeadingEmptyRows(t *testing.T) {
	data := []byte(",,\n,,\nform,item_id,key\nA,1,X\n")

	d, err := ParseCSV(data)
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if d.Columns[0] != "form" {
		t.Errorf("first column = %q, want form", d.Columns[0])
	}
	if d.Len() != 1 {
		t.Errorf("rows = %d, want 1", d.Len())
	}
}

func TestParse_UnsupportedExtension(t *testing.T) {
	if _, err := Parse("data.ods", nil); err == nil {
		t.Fatal("Parse(.ods): expected error")
	}
}
