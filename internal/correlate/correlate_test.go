package correlate_test

import (
	"testing"

	"curator/internal/correlate"
	"curator/internal/records"
	"curator/internal/testsupport"
)

func TestCorrelateSlugMatchWinsOutright(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	correlator := correlate.New(cfg)

	rec := &records.Record{Title: "Soil carbon storage under no-till systems"}
	candidates := []string{
		"soil_carbon_storage_under_no_till_systems_review.pdf",
		"soil_carbon_storage_under_no_till_systems.pdf",
	}
	match, ok := correlator.Correlate(rec, candidates)
	if !ok {
		t.Fatal("expected a match")
	}
	if match.Method != correlate.MethodSlug {
		t.Fatalf("method = %q, want %q", match.Method, correlate.MethodSlug)
	}
	if match.FileName != "soil_carbon_storage_under_no_till_systems.pdf" {
		t.Fatalf("file = %q", match.FileName)
	}
	if match.Score != 1 {
		t.Fatalf("score = %v, want 1", match.Score)
	}
}

func TestCorrelateTokenOverlap(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithOverlapThreshold(0.6))
	correlator := correlate.New(cfg)

	rec := &records.Record{Title: "EFFECT OF VARIOUS AMINO ACIDS ON SHOOT REGENERATION OF SUGARCANE"}
	candidates := []string{
		"effect_amino_acids_shoot_regeneration_sugarcane.pdf",
		"unrelated_survey_of_wetland_birds.pdf",
	}
	match, ok := correlator.Correlate(rec, candidates)
	if !ok {
		t.Fatal("expected an overlap match")
	}
	if match.Method != correlate.MethodOverlap {
		t.Fatalf("method = %q, want %q", match.Method, correlate.MethodOverlap)
	}
	if match.FileName != "effect_amino_acids_shoot_regeneration_sugarcane.pdf" {
		t.Fatalf("file = %q", match.FileName)
	}
	if match.Score < 0.6 {
		t.Fatalf("score = %v, want >= 0.6", match.Score)
	}
}

func TestCorrelateDiacriticsFoldBeforeMatching(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	correlator := correlate.New(cfg)

	rec := &records.Record{Title: "Análise da qualidade da água em regiões irrigadas"}
	candidates := []string{"analise_qualidade_agua_regioes_irrigadas.pdf"}
	match, ok := correlator.Correlate(rec, candidates)
	if !ok {
		t.Fatal("expected a match across diacritics")
	}
	if match.Method != correlate.MethodOverlap {
		t.Fatalf("method = %q, want %q", match.Method, correlate.MethodOverlap)
	}
}

func TestCorrelateAuthorYearFallback(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	correlator := correlate.New(cfg)

	rec := &records.Record{
		Title:   "Long-term phosphorus cycling in tropical pastures",
		Authors: "Carvalho, M. S.; Lima, J. P.",
		Year:    "2019",
	}
	candidates := []string{"carvalho_2019_pastagens.pdf"}
	match, ok := correlator.Correlate(rec, candidates)
	if !ok {
		t.Fatal("expected author+year fallback to match")
	}
	if match.Method != correlate.MethodAuthorYear {
		t.Fatalf("method = %q, want %q", match.Method, correlate.MethodAuthorYear)
	}
	if match.Score != 0.9 {
		t.Fatalf("score = %v, want 0.9", match.Score)
	}
}

func TestCorrelateAuthorYearDisabledByConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Correlate.AuthorYearOverride = false
	correlator := correlate.New(cfg)

	rec := &records.Record{
		Title:   "Long-term phosphorus cycling in tropical pastures",
		Authors: "Carvalho, M. S.",
		Year:    "2019",
	}
	if _, ok := correlator.Correlate(rec, []string{"carvalho_2019_pastagens.pdf"}); ok {
		t.Fatal("fallback must not fire when disabled")
	}
}

func TestCorrelateAmbiguousTie(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	correlator := correlate.New(cfg)

	rec := &records.Record{Title: "Nitrogen uptake in maize"}
	candidates := []string{
		"nitrogen_uptake_maize_b.pdf",
		"nitrogen_uptake_maize_a.pdf",
	}
	match, ok := correlator.Correlate(rec, candidates)
	if !ok {
		t.Fatal("expected a match")
	}
	if !match.Ambiguous {
		t.Fatal("expected tie to be flagged ambiguous")
	}
	if match.FileName != "nitrogen_uptake_maize_a.pdf" {
		t.Fatalf("tie should resolve lexicographically, got %q", match.FileName)
	}
}

func TestCorrelateNoMatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	correlator := correlate.New(cfg)

	rec := &records.Record{Title: "Nitrogen uptake in maize"}
	if _, ok := correlator.Correlate(rec, []string{"wetland_bird_survey.pdf"}); ok {
		t.Fatal("expected no match")
	}
}

func TestFirstAuthorSurname(t *testing.T) {
	cases := []struct {
		authors string
		want    string
	}{
		{"Carvalho, M. S.; Lima, J. P.", "carvalho"},
		{"Maria Souza Carvalho and João Lima", "carvalho"},
		{"SILVA, A.", "silva"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := correlate.FirstAuthorSurname(tc.authors); got != tc.want {
			t.Errorf("FirstAuthorSurname(%q) = %q, want %q", tc.authors, got, tc.want)
		}
	}
}
