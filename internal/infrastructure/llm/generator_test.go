package llm

import (
	"reflect"
	"testing"
)

func TestParseSuggestions(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []string
		wantErr bool
	}{
		{name: "object", in: `{"subtasks": ["Buy milk", "Call vet"]}`, want: []string{"Buy milk", "Call vet"}},
		{name: "bare array", in: `["a", "b"]`, want: []string{"a", "b"}},
		{name: "fenced", in: "```json\n{\"subtasks\": [\"x\"]}\n```", want: []string{"x"}},
		{name: "fenced array", in: "```\n[\"y\"]\n```", want: []string{"y"}},
		{name: "prose", in: "Sure! Here are some ideas.", wantErr: true},
		{name: "wrong shape", in: `{"steps": ["a"]}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSuggestions(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}
