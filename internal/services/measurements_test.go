package services_test

import (
	"reflect"
	"testing"

	"github.com/atelierbook/atelier-backend/internal/services"
)

func TestParseMeasurementLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{
			name:  "two comma-separated measurements",
			input: "талия 90, бедра 95",
			want:  map[string]string{"талия": "90", "бедра": "95"},
		},
		{
			name:  "newline separated",
			input: "талия 90\nбедра 95",
			want:  map[string]string{"талия": "90", "бедра": "95"},
		},
		{
			name:  "unparseable fragment is dropped, not an error",
			input: "привет, талия 90",
			want:  map[string]string{"талия": "90"},
		},
		{
			name:  "last write wins for a repeated label",
			input: "талия 90, талия 95",
			want:  map[string]string{"талия": "95"},
		},
		{
			name:  "decimal dot kept",
			input: "обхват груди 92.5",
			want:  map[string]string{"обхват груди": "92.5"},
		},
		{
			name:  "label is lower-cased",
			input: "Талия 90",
			want:  map[string]string{"талия": "90"},
		},
		{
			name:  "multiple spaces between label and value",
			input: "талия   90",
			want:  map[string]string{"талия": "90"},
		},
		{
			name:  "nothing recognized",
			input: "просто болтовня без чисел",
			want:  map[string]string{},
		},
		{
			name:  "empty input",
			input: "",
			want:  map[string]string{},
		},
		{
			name:  "value without label dropped",
			input: "90",
			want:  map[string]string{},
		},
		{
			name:  "empty fragments between commas ignored",
			input: ", ,талия 90, ,",
			want:  map[string]string{"талия": "90"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := services.ParseMeasurementLines(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseMeasurementLines(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
