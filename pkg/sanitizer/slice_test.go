package sanitizer

import (
	"reflect"
	"testing"
)

func TestNormalizeStringSlice(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "trim and collapse",
			input: []string{" Dental ", "Emergency   Care"},
			want:  []string{"Dental", "Emergency Care"},
		},
		{
			name:  "remove duplicates after normalization",
			input: []string{"Surgery", " Surgery", "Dental"},
			want:  []string{"Surgery", "Dental"},
		},
		{
			name:  "drop empty values",
			input: []string{"", "  ", "Medicine"},
			want:  []string{"Medicine"},
		},
		{
			name:  "nil input",
			input: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeStringSlice(tt.input, TrimAndNormalize)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeStringSlice(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
