package strutil

import "testing"

func TestForeignKeyName(t *testing.T) {
	tests := []struct {
		table   string
		columns []string
		ref     string
		want    string
	}{
		{"a", []string{"b"}, "t", "a_b_fk_t"},
		{"order_item", []string{"order_id", "line"}, "order", "order_item_order_id_line_fk_order"},
	}
	for _, tt := range tests {
		if got := ForeignKeyName(tt.table, tt.columns, tt.ref); got != tt.want {
			t.Errorf("ForeignKeyName(%q, %v, %q) = %q, want %q", tt.table, tt.columns, tt.ref, got, tt.want)
		}
	}
}

func TestJoinColumns(t *testing.T) {
	if got := JoinColumns([]string{"a", "b"}); got != "a, b" {
		t.Errorf("JoinColumns() = %q", got)
	}
	if got := JoinColumns(nil); got != "" {
		t.Errorf("JoinColumns(nil) = %q", got)
	}
}

func TestQuoteLiteral(t *testing.T) {
	tests := map[string]string{
		"":           "''",
		"abc":        "'abc'",
		"John ' Doe": "'John '' Doe'",
		"''":         "''''''",
	}
	for in, want := range tests {
		if got := QuoteLiteral(in); got != want {
			t.Errorf("QuoteLiteral(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestJoinInlineComments(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want string
	}{
		{"nil", nil, ""},
		{"single", []string{"a"}, "a"},
		{"trimmed", []string{" a ", "b  "}, "a b"},
		{"skips empty", []string{"", "x", "  "}, "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JoinInlineComments(tt.in); got != tt.want {
				t.Errorf("JoinInlineComments(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIndent(t *testing.T) {
	if got := Indent("  ", 0); got != "" {
		t.Errorf("Indent(0) = %q", got)
	}
	if got := Indent("  ", 2); got != "    " {
		t.Errorf("Indent(2) = %q", got)
	}
	if got := Indent("\t", 1); got != "\t" {
		t.Errorf("Indent(tab) = %q", got)
	}
}
