package transport

import "testing"

func TestCheckPassword(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		configured string
		presented  string
		want       bool
	}{
		{"matching", "hunter2", "hunter2", true},
		{"mismatched", "hunter2", "wrong", false},
		{"different lengths", "hunter2", "hunter22", false},
		{"auth disabled", "", "anything", true},
		{"auth disabled empty presented", "", "", true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := CheckPassword([]byte(tc.configured), []byte(tc.presented))
			if got != tc.want {
				t.Errorf("CheckPassword(%q, %q) = %v, want %v", tc.configured, tc.presented, got, tc.want)
			}
		})
	}
}
