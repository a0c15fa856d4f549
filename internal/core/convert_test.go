package core

import (
	"testing"
	"time"
)

// ----------------------------------------------------------------------------
// ToPgNumeric Tests
// ----------------------------------------------------------------------------

func TestToPgNumeric(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
	}{
		// Valid: Basic values
		{
			name:      "positive integer",
			input:     "123",
			wantValid: true,
		},
		{
			name:      "zero",
			input:     "0",
			wantValid: true,
		},
		{
			name:      "negative integer",
			input:     "-456",
			wantValid: true,
		},
		{
			name:      "decimal number",
			input:     "123.45",
			wantValid: true,
		},
		{
			name:      "leading decimal point",
			input:     ".99",
			wantValid: true,
		},
		{
			name:      "explicit positive sign",
			input:     "+123",
			wantValid: true,
		},

		// Valid: Currency symbols and separators
		{
			name:      "dollar sign with thousands separator",
			input:     "$1,234.56",
			wantValid: true,
		},
		{
			name:      "euro sign",
			input:     "€1234.56",
			wantValid: true,
		},
		{
			name:      "pound sign",
			input:     "£1234.56",
			wantValid: true,
		},
		{
			name:      "millions with separators",
			input:     "1,000,000",
			wantValid: true,
		},

		// Valid: Accounting format (parentheses for negative)
		{
			name:      "accounting negative parentheses",
			input:     "(123.45)",
			wantValid: true,
		},
		{
			name:      "accounting negative with currency",
			input:     "($1,234.56)",
			wantValid: true,
		},

		// Note: Scientific notation is NOT supported by pgtype.Numeric.Scan()
		// These test cases document current behavior (invalid)
		{
			name:      "scientific notation not supported",
			input:     "1.5e10",
			wantValid: false,
		},

		// Valid: Whitespace handling
		{
			name:      "surrounded by whitespace",
			input:     "  123.45  ",
			wantValid: true,
		},

		// Invalid
		{
			name:      "empty string",
			input:     "",
			wantValid: false,
		},
		{
			name:      "only whitespace",
			input:     "   ",
			wantValid: false,
		},
		{
			name:      "alphabetic string",
			input:     "abc",
			wantValid: false,
		},
		{
			name:      "mixed alphanumeric",
			input:     "12abc34",
			wantValid: false,
		},
		{
			name:      "only currency symbol",
			input:     "$",
			wantValid: false,
		},
		{
			name:      "multiple decimal points",
			input:     "12.34.56",
			wantValid: false,
		},
		{
			name:      "double negative",
			input:     "--123",
			wantValid: false,
		},
		{
			name:      "NaN",
			input:     "NaN",
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToPgNumeric(tt.input)

			if result.Valid != tt.wantValid {
				t.Errorf("ToPgNumeric(%q).Valid = %v, want %v",
					tt.input, result.Valid, tt.wantValid)
				return
			}

			if tt.wantValid {
				f, err := result.Float64Value()
				if err != nil {
					t.Errorf("ToPgNumeric(%q) Float64Value error: %v", tt.input, err)
				}
				if !f.Valid {
					t.Errorf("ToPgNumeric(%q) Float64Value returned invalid", tt.input)
				}
			}
		})
	}
}

func TestToPgNumeric_AccountingSign(t *testing.T) {
	result := ToPgNumeric("(99.50)")
	if !result.Valid {
		t.Fatal("ToPgNumeric((99.50)) returned invalid")
	}

	f, err := result.Float64Value()
	if err != nil {
		t.Fatalf("Float64Value() error: %v", err)
	}
	if f.Float64 >= 0 {
		t.Errorf("ToPgNumeric((99.50)) = %v, want negative", f.Float64)
	}
}

// ----------------------------------------------------------------------------
// ToPgTimestamp Tests
// ----------------------------------------------------------------------------

func TestToPgTimestamp(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantYear  int
		wantMonth time.Month
		wantDay   int
	}{
		{
			name:      "ISO format standard",
			input:     "2024-01-15",
			wantValid: true,
			wantYear:  2024,
			wantMonth: time.January,
			wantDay:   15,
		},
		{
			name:      "ISO format leap year Feb 29",
			input:     "2024-02-29",
			wantValid: true,
			wantYear:  2024,
			wantMonth: time.February,
			wantDay:   29,
		},
		{
			name:      "US format with slashes",
			input:     "01/15/2024",
			wantValid: true,
			wantYear:  2024,
			wantMonth: time.January,
			wantDay:   15,
		},
		{
			name:      "US format single digit month and day",
			input:     "1/5/2024",
			wantValid: true,
			wantYear:  2024,
			wantMonth: time.January,
			wantDay:   5,
		},
		{
			name:      "dot separator",
			input:     "01.15.2024",
			wantValid: true,
			wantYear:  2024,
			wantMonth: time.January,
			wantDay:   15,
		},
		{
			name:      "year first with slash",
			input:     "2024/01/15",
			wantValid: true,
			wantYear:  2024,
			wantMonth: time.January,
			wantDay:   15,
		},
		{
			name:      "text month",
			input:     "Jan 15, 2024",
			wantValid: true,
			wantYear:  2024,
			wantMonth: time.January,
			wantDay:   15,
		},
		{
			name:      "day first text month",
			input:     "15 Jan 2024",
			wantValid: true,
			wantYear:  2024,
			wantMonth: time.January,
			wantDay:   15,
		},
		{
			name:      "compact format no separators",
			input:     "20240115",
			wantValid: true,
			wantYear:  2024,
			wantMonth: time.January,
			wantDay:   15,
		},
		{
			name:      "surrounding whitespace",
			input:     "  2024-01-15  ",
			wantValid: true,
			wantYear:  2024,
			wantMonth: time.January,
			wantDay:   15,
		},

		// Invalid
		{
			name:      "empty string",
			input:     "",
			wantValid: false,
		},
		{
			name:      "not a date",
			input:     "hello world",
			wantValid: false,
		},
		{
			name:      "month greater than 12",
			input:     "2024-13-01",
			wantValid: false,
		},
		{
			name:      "invalid Feb 29 non-leap year",
			input:     "2023-02-29",
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToPgTimestamp(tt.input)

			if result.Valid != tt.wantValid {
				t.Errorf("ToPgTimestamp(%q).Valid = %v, want %v",
					tt.input, result.Valid, tt.wantValid)
				return
			}

			if tt.wantValid {
				if result.Time.Year() != tt.wantYear {
					t.Errorf("ToPgTimestamp(%q).Year = %d, want %d",
						tt.input, result.Time.Year(), tt.wantYear)
				}
				if result.Time.Month() != tt.wantMonth {
					t.Errorf("ToPgTimestamp(%q).Month = %v, want %v",
						tt.input, result.Time.Month(), tt.wantMonth)
				}
				if result.Time.Day() != tt.wantDay {
					t.Errorf("ToPgTimestamp(%q).Day = %d, want %d",
						tt.input, result.Time.Day(), tt.wantDay)
				}
			}
		})
	}
}

// TestToPgTimestamp_TwoDigitYear tests 2-digit year handling with pivot logic.
func TestToPgTimestamp_TwoDigitYear(t *testing.T) {
	originalPivot := TwoDigitYearPivot
	defer func() { TwoDigitYearPivot = originalPivot }()

	TwoDigitYearPivot = 20

	tests := []struct {
		name     string
		input    string
		wantYear int
	}{
		{
			name:     "2-digit year within pivot stays current century",
			input:    "01/15/25",
			wantYear: 2025,
		},
		{
			name:     "2-digit year 99 as 1999",
			input:    "01/15/99",
			wantYear: 1999,
		},
		{
			name:     "dash format 2-digit year",
			input:    "1-15-99",
			wantYear: 1999,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToPgTimestamp(tt.input)
			if !result.Valid {
				t.Fatalf("ToPgTimestamp(%q) returned invalid", tt.input)
			}
			if result.Time.Year() != tt.wantYear {
				t.Errorf("ToPgTimestamp(%q).Year = %d, want %d",
					tt.input, result.Time.Year(), tt.wantYear)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ToPgText Tests
// ----------------------------------------------------------------------------

func TestToPgText(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantValid  bool
		wantString string
	}{
		{
			name:       "simple string",
			input:      "hello",
			wantValid:  true,
			wantString: "hello",
		},
		{
			name:       "surrounded whitespace trimmed",
			input:      "  hello world  ",
			wantValid:  true,
			wantString: "hello world",
		},
		{
			name:       "unicode preserved",
			input:      "café",
			wantValid:  true,
			wantString: "café",
		},
		{
			name:      "empty string",
			input:     "",
			wantValid: false,
		},
		{
			name:      "only whitespace",
			input:     "   ",
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToPgText(tt.input)

			if result.Valid != tt.wantValid {
				t.Errorf("ToPgText(%q).Valid = %v, want %v",
					tt.input, result.Valid, tt.wantValid)
				return
			}

			if tt.wantValid && result.String != tt.wantString {
				t.Errorf("ToPgText(%q).String = %q, want %q",
					tt.input, result.String, tt.wantString)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// CleanCell Tests
// ----------------------------------------------------------------------------

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "simple string unchanged",
			input: "hello",
			want:  "hello",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "surrounded by whitespace",
			input: "  hello  ",
			want:  "hello",
		},
		{
			name:  "Excel formula with quotes",
			input: `="hello"`,
			want:  "hello",
		},
		{
			name:  "Excel formula number as text",
			input: `="12345"`,
			want:  "12345",
		},
		{
			name:  "bare equals sign",
			input: "=SUM(A1)",
			want:  "SUM(A1)",
		},
		{
			name:  "double quotes removed",
			input: `"hello"`,
			want:  "hello",
		},
		{
			name:  "leading single quote (Excel text prefix)",
			input: "'12345",
			want:  "12345",
		},
		{
			name:  "whitespace and quotes",
			input: `  "hello"  `,
			want:  "hello",
		},
		{
			name:  "only quotes",
			input: `""`,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanCell(tt.input)
			if got != tt.want {
				t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
