package services

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"testing"
)

// testModel splits on the service flag (feature 1): standard-tier stops
// land on a low-risk leaf, premium on a high-risk one.
func testModel() *DelayModel {
	return &DelayModel{Nodes: []TreeNode{
		{Feature: 1, Threshold: 0.5, Left: 1, Right: 2},
		{Left: -1, Right: -1, Value: []float64{0.9, 0.1}},
		{Left: -1, Right: -1, Value: []float64{0.2, 0.8}},
	}}
}

func TestScorePrioritiesNilModel(t *testing.T) {
	rows := []StopFeatures{
		{ClusterLabel: 0, ServiceType: "standard"},
		{ClusterLabel: 1, ServiceType: "express"},
	}

	scores := ScorePriorities(nil, rows)
	if len(scores) != 2 {
		t.Fatalf("expected 2 scores, got %d", len(scores))
	}
	for i, s := range scores {
		if s != NeutralPriority {
			t.Fatalf("score[%d] = %v, want %v", i, s, NeutralPriority)
		}
	}
}

func TestScorePrioritiesTreeWalk(t *testing.T) {
	rows := []StopFeatures{
		{ClusterLabel: 0, ServiceType: "standard"},
		{ClusterLabel: 0, ServiceType: "Standard Economy"},
		{ClusterLabel: 2, ServiceType: "express"},
	}

	scores := ScorePriorities(testModel(), rows)
	if scores[0] != 0.1 {
		t.Fatalf("standard score = %v, want 0.1", scores[0])
	}
	if scores[1] != 0.1 {
		t.Fatalf("standard-prefixed score = %v, want 0.1", scores[1])
	}
	if scores[2] != 0.8 {
		t.Fatalf("express score = %v, want 0.8", scores[2])
	}
}

func TestScorePrioritiesMalformedTreeFallsBack(t *testing.T) {
	// A node pointing outside the tree degrades every score to neutral,
	// not just the failing row.
	model := &DelayModel{Nodes: []TreeNode{
		{Feature: 1, Threshold: 0.5, Left: 99, Right: 99},
	}}

	rows := []StopFeatures{
		{ClusterLabel: 0, ServiceType: "standard"},
		{ClusterLabel: 1, ServiceType: "express"},
	}

	scores := ScorePriorities(model, rows)
	for i, s := range scores {
		if s != NeutralPriority {
			t.Fatalf("score[%d] = %v, want %v", i, s, NeutralPriority)
		}
	}
}

func TestScoreScalarLeafAndClamping(t *testing.T) {
	model := &DelayModel{Nodes: []TreeNode{
		{Feature: 0, Threshold: 0, Left: 1, Right: 2},
		{Left: -1, Right: -1, Value: []float64{-0.3}},
		{Left: -1, Right: -1, Value: []float64{1.7}},
	}}

	low, err := model.Score([]float64{-1, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if low != 0 {
		t.Fatalf("score = %v, want clamp to 0", low)
	}

	high, err := model.Score([]float64{1, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if high != 1 {
		t.Fatalf("score = %v, want clamp to 1", high)
	}
}

func TestLoadDelayModelRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "delay_model.gob")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create artifact: %v", err)
	}
	if err := gob.NewEncoder(f).Encode(testModel()); err != nil {
		t.Fatalf("encode artifact: %v", err)
	}
	f.Close()

	m, err := LoadDelayModel(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(m.Nodes))
	}

	s, err := m.Score([]float64{0, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != 0.8 {
		t.Fatalf("score = %v, want 0.8", s)
	}
}

func TestLoadDelayModelMissingFile(t *testing.T) {
	if _, err := LoadDelayModel(filepath.Join(t.TempDir(), "absent.gob")); err == nil {
		t.Fatal("expected error for missing artifact")
	}
}

func TestLoadDelayModelCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.gob")
	if err := os.WriteFile(path, []byte("not a gob stream"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}

	if _, err := LoadDelayModel(path); err == nil {
		t.Fatal("expected error for corrupt artifact")
	}
}

func TestServiceTypeFlag(t *testing.T) {
	cases := []struct {
		serviceType string
		want        int
	}{
		{"standard", 0},
		{"  Standard  ", 0},
		{"standard_overnight", 0},
		{"express", 1},
		{"premium", 1},
		{"", 1},
	}

	for _, c := range cases {
		if got := serviceTypeFlag(c.serviceType); got != c.want {
			t.Fatalf("serviceTypeFlag(%q) = %d, want %d", c.serviceType, got, c.want)
		}
	}
}
