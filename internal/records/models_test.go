package records

import "testing"

func TestPendingLifecycle(t *testing.T) {
	rec := &Record{Title: "Soil nutrients"}
	if !rec.Pending() {
		t.Fatal("new record should be pending")
	}

	rec.Approve()
	if rec.Pending() || !rec.Approved || rec.Rejected {
		t.Fatalf("after Approve: approved=%v rejected=%v", rec.Approved, rec.Rejected)
	}

	rec.Reject("extraction failed")
	if rec.Approved || !rec.Rejected {
		t.Fatalf("after Reject: approved=%v rejected=%v", rec.Approved, rec.Rejected)
	}
	if rec.Feedback != "extraction failed" {
		t.Fatalf("feedback = %q", rec.Feedback)
	}
}

func TestNormalizeDOI(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{" 10.1000/XYZ ", "10.1000/xyz"},
		{"https://doi.org/10.1000/xyz", "10.1000/xyz"},
		{"HTTPS://DOI.ORG/10.1000/XYZ", "10.1000/xyz"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeDOI(tc.in); got != tc.want {
			t.Errorf("NormalizeDOI(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeTitle(t *testing.T) {
	if got := NormalizeTitle("  Effect Of Various Amino Acids "); got != "effect of various amino acids" {
		t.Fatalf("NormalizeTitle = %q", got)
	}
}

func TestIsMetadataField(t *testing.T) {
	if !IsMetadataField("doi") {
		t.Fatal("doi should be a schema field")
	}
	if IsMetadataField("unknown_column") {
		t.Fatal("unknown_column should not be a schema field")
	}
}
