package extract_test

import (
	"testing"

	"case-automation/internal/extract"
)

const description = `Some alert context

| **Start Time** | 2020-01-01 10:00:00 |
| **Source IP** | 10.0.0.1 |
| **Destination IP**  |  192.168.1.1  |
`

func TestFromText(t *testing.T) {
	e := extract.New()

	tests := []struct {
		name     string
		variable string
		want     string
		wantOK   bool
	}{
		{
			name:     "Start Time",
			variable: "Start Time",
			want:     "2020-01-01 10:00:00",
			wantOK:   true,
		},
		{
			name:     "Underscore Normalized",
			variable: "Source_IP",
			want:     "10.0.0.1",
			wantOK:   true,
		},
		{
			name:     "Whitespace Tolerant",
			variable: "Destination IP",
			want:     "192.168.1.1",
			wantOK:   true,
		},
		{
			name:     "Absent Variable",
			variable: "Hostname",
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.FromText(description, tt.variable)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestFromTextSpecialCharacters(t *testing.T) {
	e := extract.New()
	text := "| **Rule (v2.1)** | matched |"

	got, ok := e.FromText(text, "Rule (v2.1)")
	if !ok || got != "matched" {
		t.Errorf("expected regex metacharacters to be quoted, got %q ok=%v", got, ok)
	}
}

func TestWithOffset(t *testing.T) {
	e := extract.New()
	layout := "2006-01-02 15:04:05"

	t.Run("Ten Minutes Back", func(t *testing.T) {
		got, err := e.WithOffset("2020-01-01 10:00:00", layout, layout, 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "2020-01-01 09:50:00" {
			t.Errorf("expected 09:50:00, got %q", got)
		}
	})

	t.Run("Negative Offset Shifts Forward", func(t *testing.T) {
		got, err := e.WithOffset("2020-01-01 10:00:00", layout, layout, -10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "2020-01-01 10:10:00" {
			t.Errorf("expected 10:10:00, got %q", got)
		}
	})

	t.Run("Different Output Layout", func(t *testing.T) {
		got, err := e.WithOffset("2020-01-01 10:00:00", layout, "2006-01-02T15:04:05Z", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "2020-01-01T10:00:00Z" {
			t.Errorf("unexpected reformat: %q", got)
		}
	})

	t.Run("Unparseable Value", func(t *testing.T) {
		if _, err := e.WithOffset("not a time", layout, layout, 5); err == nil {
			t.Errorf("expected parse error")
		}
	})
}
