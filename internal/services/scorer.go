package services

import (
	"courier-route-service/internal/metrics"
	"encoding/gob"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
)

// NeutralPriority is the score every stop receives when the delay model
// is missing or prediction fails. Priority scoring is a soft signal and
// must never become a hard dependency of the pipeline.
const NeutralPriority = 0.5

// TreeNode is one node of a serialized decision tree. A node with
// Left < 0 is a leaf; Value then holds either per-class probabilities
// (delay probability at index 1) or a single scalar prediction.
type TreeNode struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Value     []float64
}

// DelayModel is a trained binary classifier estimating the probability
// that a stop's delivery runs late. The artifact is produced offline by
// the training job and loaded here read-only.
type DelayModel struct {
	Nodes []TreeNode
}

// StopFeatures is the feature record scored per stop. Field order must
// match the training feature vector: [cluster label, service flag].
type StopFeatures struct {
	ClusterLabel int
	ServiceType  string
}

// LoadDelayModel reads a gob-encoded decision tree from disk.
func LoadDelayModel(path string) (*DelayModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load delay model %q: %w", path, err)
	}
	defer f.Close()

	var m DelayModel
	if err := gob.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("load delay model %q: decode: %w", path, err)
	}

	if len(m.Nodes) == 0 {
		return nil, fmt.Errorf("load delay model %q: empty tree", path)
	}

	return &m, nil
}

// Score walks the tree for one feature vector and returns a delay
// probability in [0, 1].
func (m *DelayModel) Score(features []float64) (float64, error) {
	idx := 0
	for steps := 0; steps <= len(m.Nodes); steps++ {
		if idx < 0 || idx >= len(m.Nodes) {
			return 0, fmt.Errorf("score: node index %d out of range", idx)
		}
		node := m.Nodes[idx]

		if node.Left < 0 {
			return leafScore(node.Value)
		}

		if node.Feature < 0 || node.Feature >= len(features) {
			return 0, fmt.Errorf("score: feature index %d out of range", node.Feature)
		}

		if features[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}

	return 0, errors.New("score: tree walk did not terminate")
}

// leafScore accepts both artifact shapes: per-class probabilities or a
// scalar prediction.
func leafScore(value []float64) (float64, error) {
	var s float64
	switch {
	case len(value) >= 2:
		s = value[1]
	case len(value) == 1:
		s = value[0]
	default:
		return 0, errors.New("score: leaf has no value")
	}

	if s < 0 {
		s = 0
	}
	if s > 1 {
		s = 1
	}
	return s, nil
}

// ScorePriorities returns one delay-risk score per feature record, in
// input order. A nil model or any prediction failure degrades every
// score to NeutralPriority; the fallback is logged and counted but never
// aborts the pipeline.
func ScorePriorities(model *DelayModel, rows []StopFeatures) []float64 {
	if model == nil {
		return neutralScores(len(rows))
	}

	scores := make([]float64, len(rows))
	for i, row := range rows {
		features := []float64{float64(row.ClusterLabel), float64(serviceTypeFlag(row.ServiceType))}

		s, err := model.Score(features)
		if err != nil {
			log.Printf("delay scorer: prediction failed, using neutral priority: %v", err)
			metrics.ScorerFallbacks.Inc()
			return neutralScores(len(rows))
		}
		scores[i] = s
	}

	return scores
}

func neutralScores(n int) []float64 {
	scores := make([]float64, n)
	for i := range scores {
		scores[i] = NeutralPriority
	}
	return scores
}

// serviceTypeFlag compresses the service type to a binary feature:
// 0 for the standard tier, 1 for everything premium/express.
func serviceTypeFlag(serviceType string) int {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(serviceType)), "standard") {
		return 0
	}
	return 1
}
