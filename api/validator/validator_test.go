package validator

import (
	"testing"
)

type testStruct struct {
	Slug     string `validate:"required,slug"`
	Title    string `validate:"required"`
	Optional string
}

func TestValidator_ValidateStruct(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		input   interface{}
		wantErr bool
		fields  []string
	}{
		{
			name: "Valid struct",
			input: testStruct{
				Slug:  "my-talk-2024",
				Title: "My Talk",
			},
			wantErr: false,
		},
		{
			name: "Missing required fields",
			input: testStruct{
				Optional: "x",
			},
			wantErr: true,
			fields:  []string{"Slug", "Title"},
		},
		{
			name: "Uppercase slug",
			input: testStruct{
				Slug:  "My-Talk",
				Title: "My Talk",
			},
			wantErr: true,
			fields:  []string{"Slug"},
		},
		{
			name: "Slug with spaces",
			input: testStruct{
				Slug:  "my talk",
				Title: "My Talk",
			},
			wantErr: true,
			fields:  []string{"Slug"},
		},
		{
			name: "Slug with trailing hyphen",
			input: testStruct{
				Slug:  "my-talk-",
				Title: "My Talk",
			},
			wantErr: true,
			fields:  []string{"Slug"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := v.ValidateStruct(tt.input)

			if tt.wantErr && len(errors) == 0 {
				t.Error("ValidateStruct() expected errors but got none")
				return
			}

			if !tt.wantErr && len(errors) > 0 {
				t.Errorf("ValidateStruct() got unexpected errors: %v", errors)
				return
			}

			if tt.wantErr {
				foundFields := make([]string, 0)
				for _, err := range errors {
					foundFields = append(foundFields, err.Field)
				}
				for _, expectedField := range tt.fields {
					found := false
					for _, foundField := range foundFields {
						if foundField == expectedField {
							found = true
							break
						}
					}
					if !found {
						t.Errorf("Expected validation error for field %s, but got none", expectedField)
					}
				}
			}
		})
	}
}

func TestValidator_Validate(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		value   interface{}
		tag     string
		wantErr bool
	}{
		{
			name:    "Valid slug",
			value:   "live-reactions",
			tag:     "slug",
			wantErr: false,
		},
		{
			name:    "Invalid slug",
			value:   "Live Reactions!",
			tag:     "slug",
			wantErr: true,
		},
		{
			name:    "Required field present",
			value:   "value",
			tag:     "required",
			wantErr: false,
		},
		{
			name:    "Required field empty",
			value:   "",
			tag:     "required",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := v.Validate(tt.value, tt.tag)

			if tt.wantErr && len(errors) == 0 {
				t.Error("Validate() expected errors but got none")
			}

			if !tt.wantErr && len(errors) > 0 {
				t.Errorf("Validate() got unexpected errors: %v", errors)
			}
		})
	}
}

func TestNew(t *testing.T) {
	v := New()
	if v == nil || v.cli == nil {
		t.Error("New() returned invalid validator")
	}
}
