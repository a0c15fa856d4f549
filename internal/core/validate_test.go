package core

import "testing"

func requiredField(key string) SemanticField {
	return SemanticField{Key: key, DisplayName: key, ValueType: "text", Required: true}
}

func optionalField(key string) SemanticField {
	return SemanticField{Key: key, DisplayName: key, ValueType: "text"}
}

func TestValidateStructure(t *testing.T) {
	tests := []struct {
		name       string
		fields     []SemanticField
		headers    []string
		wantValid  bool
		wantIssues int
	}{
		{
			name:      "all required headers present",
			fields:    []SemanticField{requiredField("name"), requiredField("email")},
			headers:   []string{"name", "email", "extra"},
			wantValid: true,
		},
		{
			name:      "header match is case insensitive",
			fields:    []SemanticField{requiredField("email")},
			headers:   []string{"EMAIL"},
			wantValid: true,
		},
		{
			name:       "missing required header",
			fields:     []SemanticField{requiredField("name"), requiredField("email")},
			headers:    []string{"name"},
			wantValid:  false,
			wantIssues: 1,
		},
		{
			name:      "missing optional header is fine",
			fields:    []SemanticField{optionalField("nickname")},
			headers:   []string{"name"},
			wantValid: true,
		},
		{
			name:       "no headers at all",
			fields:     []SemanticField{requiredField("name"), requiredField("email")},
			headers:    nil,
			wantValid:  false,
			wantIssues: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := &Dataset{Headers: tt.headers}
			result := ValidateStructure(tt.fields, ds)

			if result.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v", result.Valid, tt.wantValid)
			}
			if len(result.Errors) != tt.wantIssues {
				t.Fatalf("got %d issues, want %d: %+v", len(result.Errors), tt.wantIssues, result.Errors)
			}
			for _, issue := range result.Errors {
				if issue.Kind != KindMissingHeader {
					t.Errorf("issue kind = %q, want %q", issue.Kind, KindMissingHeader)
				}
				if issue.Row != 0 {
					t.Errorf("structural issue row = %d, want 0", issue.Row)
				}
			}
		})
	}
}

func TestValidateRows(t *testing.T) {
	fields := []SemanticField{requiredField("name"), optionalField("dept")}

	ds := &Dataset{
		Headers: []string{"name", "dept"},
		Rows: []map[string]string{
			{"name": "Alice", "dept": "Eng"},
			{"name": "", "dept": "Sales"},   // empty required value
			{"dept": "Ops"},                 // required key missing entirely
			{"name": "   ", "dept": ""},     // whitespace counts as empty
			{"name": "Bob"},                 // optional field absent is fine
		},
	}

	result := ValidateRows(fields, ds)

	if result.TotalRows != 5 {
		t.Errorf("TotalRows = %d, want 5", result.TotalRows)
	}
	if result.ValidRows != 2 {
		t.Errorf("ValidRows = %d, want 2", result.ValidRows)
	}
	if result.InvalidRows != 3 {
		t.Errorf("InvalidRows = %d, want 3", result.InvalidRows)
	}
	if result.Valid {
		t.Error("Valid = true, want false")
	}

	if len(result.Errors) != 3 {
		t.Fatalf("got %d errors, want 3: %+v", len(result.Errors), result.Errors)
	}
	wantRows := []int{2, 3, 4}
	for i, issue := range result.Errors {
		if issue.Row != wantRows[i] {
			t.Errorf("error %d row = %d, want %d", i, issue.Row, wantRows[i])
		}
		if issue.Field != "name" {
			t.Errorf("error %d field = %q, want name", i, issue.Field)
		}
		if issue.Kind != KindRequired {
			t.Errorf("error %d kind = %q, want %q", i, issue.Kind, KindRequired)
		}
	}
}

func TestValidateRows_RowPartition(t *testing.T) {
	// ValidRows + InvalidRows must always equal TotalRows.
	fields := []SemanticField{requiredField("a"), requiredField("b")}
	ds := &Dataset{
		Headers: []string{"a", "b"},
		Rows: []map[string]string{
			{"a": "1", "b": "2"},
			{"a": "", "b": ""}, // two issues, still one invalid row
			{"a": "3"},
		},
	}

	result := ValidateRows(fields, ds)

	if result.ValidRows+result.InvalidRows != result.TotalRows {
		t.Errorf("ValidRows(%d) + InvalidRows(%d) != TotalRows(%d)",
			result.ValidRows, result.InvalidRows, result.TotalRows)
	}
	if result.InvalidRows != 2 {
		t.Errorf("InvalidRows = %d, want 2", result.InvalidRows)
	}
	if len(result.Errors) != 3 {
		t.Errorf("got %d errors, want 3", len(result.Errors))
	}
}

func TestValidateRows_HeaderCaseInsensitive(t *testing.T) {
	// The row check must resolve keys to headers the same way the
	// structural check does, or ModeFull contradicts itself on datasets
	// whose headers differ from the keys only in case.
	fields := []SemanticField{requiredField("email")}
	ds := &Dataset{
		Headers: []string{"EMAIL"},
		Rows: []map[string]string{
			{"EMAIL": "a@example.com"},
			{"EMAIL": ""},
		},
	}

	rows := ValidateRows(fields, ds)
	if rows.ValidRows != 1 || rows.InvalidRows != 1 {
		t.Errorf("ValidRows = %d, InvalidRows = %d, want 1 and 1",
			rows.ValidRows, rows.InvalidRows)
	}

	full := RunValidation(fields, ds, ModeFull)
	if len(full.Errors) != 1 {
		t.Fatalf("full mode errors = %+v, want exactly the empty-cell issue", full.Errors)
	}
	if full.Errors[0].Kind != KindRequired || full.Errors[0].Row != 2 {
		t.Errorf("issue = %+v, want kind %q at row 2", full.Errors[0], KindRequired)
	}
}

func TestValidateEmptyDataset(t *testing.T) {
	fields := []SemanticField{requiredField("name")}
	ds := &Dataset{Headers: []string{"name"}}

	for _, mode := range []ValidationMode{ModeStructural, ModeRows, ModeFull} {
		result := RunValidation(fields, ds, mode)
		if !result.Valid {
			t.Errorf("mode %q: empty dataset with valid headers should pass, got %+v", mode, result.Errors)
		}
		if result.TotalRows != 0 {
			t.Errorf("mode %q: TotalRows = %d, want 0", mode, result.TotalRows)
		}
	}
}

func TestRunValidation_FullCombinesIssues(t *testing.T) {
	fields := []SemanticField{requiredField("name"), requiredField("email")}
	ds := &Dataset{
		Headers: []string{"name"}, // email header missing
		Rows: []map[string]string{
			{"name": "Alice"},
			{"name": ""},
		},
	}

	result := RunValidation(fields, ds, ModeFull)

	if result.Valid {
		t.Error("Valid = true, want false")
	}

	// One structural issue for the missing email header, then row-level
	// issues: email empty in both rows, name empty in row 2.
	var structural, rowLevel int
	for _, issue := range result.Errors {
		switch issue.Kind {
		case KindMissingHeader:
			structural++
		case KindRequired:
			rowLevel++
		default:
			t.Errorf("unexpected issue kind %q", issue.Kind)
		}
	}
	if structural != 1 {
		t.Errorf("structural issues = %d, want 1", structural)
	}
	if rowLevel != 3 {
		t.Errorf("row-level issues = %d, want 3", rowLevel)
	}

	// Structural issues come first.
	if len(result.Errors) > 0 && result.Errors[0].Kind != KindMissingHeader {
		t.Errorf("first issue kind = %q, want %q", result.Errors[0].Kind, KindMissingHeader)
	}
}
