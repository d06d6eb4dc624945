package config

import "testing"

func TestMergeLaterLayerOverridesEarlier(t *testing.T) {
	layered := &LayeredConfig{Layers: []*Config{
		{Secrets: map[string]Binding{"A": {Default: "from-base"}}},
		{Secrets: map[string]Binding{"A": {Default: "from-override"}}},
	}}

	rp, err := Merge(layered, "default")
	if err != nil {
		t.Fatalf("Merge() error: %v", err)
	}
	if rp.Secrets["A"].Default != "from-override" {
		t.Fatalf("Secrets[A].Default = %q, want from-override", rp.Secrets["A"].Default)
	}
}

func TestMergeIsWholeRecordNotFieldLevel(t *testing.T) {
	layered := &LayeredConfig{Layers: []*Config{
		{Secrets: map[string]Binding{"A": {Provider: "p1", Value: "v1", Description: "base"}}},
		{Secrets: map[string]Binding{"A": {Provider: "p2", Value: "v2"}}},
	}}

	rp, err := Merge(layered, "default")
	if err != nil {
		t.Fatalf("Merge() error: %v", err)
	}
	got := rp.Secrets["A"]
	if got.Provider != "p2" || got.Value != "v2" {
		t.Fatalf("Secrets[A] = %+v, want the later layer's provider/value", got)
	}
	if got.Description != "" {
		t.Fatalf("Secrets[A].Description = %q, want empty - whole-record override must not inherit the base's Description", got.Description)
	}
}

func TestMergeProfileOverlaysTopLevel(t *testing.T) {
	layered := &LayeredConfig{Layers: []*Config{
		{
			Secrets: map[string]Binding{"A": {Default: "top-level"}},
			Profiles: map[string]ProfileConfig{
				"prod": {Secrets: map[string]Binding{"A": {Default: "prod-value"}}},
			},
		},
	}}

	rpDefault, err := Merge(layered, "default")
	if err != nil {
		t.Fatalf("Merge() error: %v", err)
	}
	if rpDefault.Secrets["A"].Default != "top-level" {
		t.Fatalf("default profile Secrets[A].Default = %q, want top-level", rpDefault.Secrets["A"].Default)
	}

	rpProd, err := Merge(layered, "prod")
	if err != nil {
		t.Fatalf("Merge() error: %v", err)
	}
	if rpProd.Secrets["A"].Default != "prod-value" {
		t.Fatalf("prod profile Secrets[A].Default = %q, want prod-value", rpProd.Secrets["A"].Default)
	}
}

func TestMergeDoesNotMutateInputLayers(t *testing.T) {
	original := Binding{Default: "unchanged"}
	layered := &LayeredConfig{Layers: []*Config{
		{Secrets: map[string]Binding{"A": original}},
	}}

	rp, err := Merge(layered, "default")
	if err != nil {
		t.Fatalf("Merge() error: %v", err)
	}
	rp.Secrets["A"] = Binding{Default: "mutated"}

	if layered.Layers[0].Secrets["A"].Default != "unchanged" {
		t.Fatal("Merge() result sharing storage with the input layer")
	}
}

func TestMergeDefaultsEmptyProfileName(t *testing.T) {
	layered := &LayeredConfig{Layers: []*Config{{}}}
	rp, err := Merge(layered, "")
	if err != nil {
		t.Fatalf("Merge() error: %v", err)
	}
	if rp.Profile != "default" {
		t.Fatalf("Profile = %q, want default", rp.Profile)
	}
}
