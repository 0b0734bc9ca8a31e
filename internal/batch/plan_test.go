package batch_test

import (
	"path/filepath"
	"reflect"
	"testing"

	"logomatch/internal/batch"
	"logomatch/internal/catalog"
)

func TestDestinationName(t *testing.T) {
	tests := []struct {
		name, source, want string
	}{
		{"LINCOLN HIGH", "LINCOLNHS.png", "lincoln_high.png"},
		{"ST. MARY'S ACADEMY", "stmary.PNG", "st_marys_academy.png"},
		{"CÔTE-SAINT-LUC HIGH", "csl.jpg", "cote_saint_luc_high.jpg"},
		{"!!!", "x.png", "unknown.png"},
	}
	for _, tt := range tests {
		if got := batch.DestinationName(tt.name, tt.source); got != tt.want {
			t.Fatalf("DestinationName(%q, %q) = %q, want %q", tt.name, tt.source, got, tt.want)
		}
	}
}

func TestBuildPlanOrderCollisionsAndStale(t *testing.T) {
	cat := catalog.New([]catalog.Entry{
		{Name: "LINCOLN HIGH"},
		{Name: "GARFIELD HIGH"},
	})
	snapshot := map[string][]string{
		"b.png": {"LINCOLN HIGH"},
		"a.png": {"LINCOLN HIGH", "GONE ACADEMY", "GARFIELD HIGH"},
	}

	plan := batch.BuildPlan(snapshot, cat, "/src", "/out")

	want := []batch.Operation{
		{SourceID: "a.png", Name: "LINCOLN HIGH", From: filepath.Join("/src", "a.png"), To: filepath.Join("/out", "lincoln_high.png")},
		{SourceID: "a.png", Name: "GARFIELD HIGH", From: filepath.Join("/src", "a.png"), To: filepath.Join("/out", "garfield_high.png")},
		{SourceID: "b.png", Name: "LINCOLN HIGH", From: filepath.Join("/src", "b.png"), To: filepath.Join("/out", "lincoln_high_2.png")},
	}
	if !reflect.DeepEqual(plan.Operations, want) {
		t.Fatalf("operations = %+v\nwant %+v", plan.Operations, want)
	}
	if len(plan.Stale) != 1 || plan.Stale[0] != (batch.StaleName{SourceID: "a.png", Name: "GONE ACADEMY"}) {
		t.Fatalf("stale = %+v", plan.Stale)
	}

	again := batch.BuildPlan(snapshot, cat, "/src", "/out")
	if !reflect.DeepEqual(plan, again) {
		t.Fatal("plan is not deterministic")
	}
}

func TestBuildPlanNilCatalogAcceptsAll(t *testing.T) {
	plan := batch.BuildPlan(map[string][]string{"x.png": {"ANY NAME"}}, nil, "s", "o")
	if len(plan.Operations) != 1 || len(plan.Stale) != 0 {
		t.Fatalf("plan = %+v", plan)
	}
}
