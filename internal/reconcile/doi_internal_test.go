package reconcile

import "testing"

func TestFirstDOI(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"plain", "available at https://doi.org/10.1016/j.still.2020.104742 online", "10.1016/j.still.2020.104742"},
		{"trailing period", "See 10.1590/S0100-06832015000100001. for details", "10.1590/S0100-06832015000100001"},
		{"trailing paren", "(doi: 10.1007/s11104-019-04012-1)", "10.1007/s11104-019-04012-1"},
		{"no identifier", "a page with only prose and years like 2021", ""},
		{"implausibly short", "ratio 10.5/2 in table", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := firstDOI(tc.text); got != tc.want {
				t.Fatalf("firstDOI(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestPlausibleDOI(t *testing.T) {
	if plausibleDOI("10.5/2") {
		t.Fatal("short identifier must be rejected")
	}
	if plausibleDOI("10.1016.j.still") {
		t.Fatal("identifier without a suffix separator must be rejected")
	}
	if !plausibleDOI("10.1016/j.still.2020.104742") {
		t.Fatal("registry identifier must be accepted")
	}
}
