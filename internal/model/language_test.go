package model

import "testing"

func TestParseLanguage(t *testing.T) {
	cases := []struct {
		in   string
		want Language
		ok   bool
	}{
		{in: "en", want: LanguagePrimary, ok: true},
		{in: "ES", want: LanguageSecondary, ok: true},
		{in: "es-MX", want: LanguageSecondary, ok: true},
		{in: " en-US ", want: LanguagePrimary, ok: true},
		{in: "fr", ok: false},
		{in: "", ok: false},
		{in: "not a tag!", ok: false},
	}
	for _, tc := range cases {
		got, ok := ParseLanguage(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseLanguage(%q) = %q,%v want %q,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestMatchAcceptLanguage(t *testing.T) {
	if got := MatchAcceptLanguage("es-ES,es;q=0.9,en;q=0.5"); got != LanguageSecondary {
		t.Fatalf("expected spanish, got %q", got)
	}
	if got := MatchAcceptLanguage("fr-FR"); got != LanguagePrimary {
		t.Fatalf("expected fallback to primary, got %q", got)
	}
	if got := MatchAcceptLanguage(""); got != LanguagePrimary {
		t.Fatalf("expected primary for empty header, got %q", got)
	}
}

func TestLanguageOther(t *testing.T) {
	if LanguagePrimary.Other() != LanguageSecondary {
		t.Fatalf("primary should flip to secondary")
	}
	if LanguageSecondary.Other().Other() != LanguageSecondary {
		t.Fatalf("double flip should be identity")
	}
	if LanguageSecondary.Code() != "ES" {
		t.Fatalf("unexpected indicator %q", LanguageSecondary.Code())
	}
}

func TestDefaultLabelerAndFallbacks(t *testing.T) {
	if got := DefaultLabeler("childAge"); got != "Child Age" {
		t.Fatalf("DefaultLabeler = %q", got)
	}

	field := FieldSpec{
		Name:  "parentName",
		Label: map[Language]string{LanguagePrimary: "Parent name"},
	}
	if got := field.LabelFor(LanguageSecondary); got != "Parent name" {
		t.Fatalf("expected primary fallback, got %q", got)
	}
	if got := (FieldSpec{Name: "zip_code"}).LabelFor(LanguagePrimary); got != "Zip Code" {
		t.Fatalf("expected derived label, got %q", got)
	}
}

func TestFormModelLookup(t *testing.T) {
	form := FormModel{Steps: []Step{
		{ID: "a", Fields: []FieldSpec{{Name: "email"}}},
		{ID: "b", Fields: []FieldSpec{{Name: "phone"}, {Name: "childAge"}}},
	}}
	if len(form.Fields()) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(form.Fields()))
	}
	if _, ok := form.Field("childAge"); !ok {
		t.Fatalf("expected childAge lookup to succeed")
	}
	if _, ok := form.Field("missing"); ok {
		t.Fatalf("expected missing lookup to fail")
	}
}
