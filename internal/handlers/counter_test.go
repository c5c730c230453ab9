package handlers

import "testing"

func TestFormatOrderNumberZeroPads(t *testing.T) {
	cases := []struct {
		seq  int64
		want string
	}{
		{1, "CK00001"},
		{42, "CK00042"},
		{99999, "CK99999"},
		{100000, "CK100000"},
	}
	for _, tc := range cases {
		if got := formatOrderNumber(tc.seq); got != tc.want {
			t.Fatalf("formatOrderNumber(%d) = %q, want %q", tc.seq, got, tc.want)
		}
	}
}
