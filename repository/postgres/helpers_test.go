package postgres

import "testing"

func TestLimitArg(t *testing.T) {
	tests := []struct {
		limit int
		want  interface{}
	}{
		{0, nil},
		{-5, nil},
		{25, 25},
		{maxPageSize, maxPageSize},
		{maxPageSize + 1, maxPageSize},
	}
	for _, tt := range tests {
		if got := limitArg(tt.limit); got != tt.want {
			t.Errorf("limitArg(%d) = %v, want %v", tt.limit, got, tt.want)
		}
	}
}
