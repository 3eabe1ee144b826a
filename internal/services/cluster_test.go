package services

import (
	"courier-route-service/internal/domain"
	"testing"
)

func TestKMeansLabelsEmpty(t *testing.T) {
	labels := KMeansLabels(nil, 3)
	if len(labels) != 0 {
		t.Fatalf("expected no labels, got %v", labels)
	}
}

func TestKMeansLabelsSingletonsWhenKAtLeastN(t *testing.T) {
	points := []domain.Coordinates{
		{Lat: 0, Lng: 0},
		{Lat: 1, Lng: 1},
		{Lat: 2, Lng: 2},
	}

	labels := KMeansLabels(points, 3)
	if len(labels) != 3 {
		t.Fatalf("expected 3 labels, got %d", len(labels))
	}
	for i, l := range labels {
		if l != i {
			t.Fatalf("label[%d] = %d, want %d", i, l, i)
		}
	}

	labels = KMeansLabels(points, 10)
	for i, l := range labels {
		if l != i {
			t.Fatalf("k > n: label[%d] = %d, want %d", i, l, i)
		}
	}
}

func TestKMeansLabelsAutoK(t *testing.T) {
	// 20 points with k <= 0 should produce round(20/8) = 3 clusters.
	points := make([]domain.Coordinates, 20)
	for i := range points {
		points[i] = domain.Coordinates{Lat: float64(i), Lng: float64(i % 5)}
	}

	labels := KMeansLabels(points, 0)
	if len(labels) != 20 {
		t.Fatalf("expected 20 labels, got %d", len(labels))
	}

	seen := map[int]bool{}
	for i, l := range labels {
		if l < 0 || l >= 3 {
			t.Fatalf("label[%d] = %d, want range [0, 3)", i, l)
		}
		seen[l] = true
	}
	if len(seen) != 3 {
		t.Fatalf("expected 3 distinct clusters, got %d", len(seen))
	}
}

func TestKMeansLabelsSeparatesBlobs(t *testing.T) {
	// Two tight, well separated blobs must never be split across labels.
	points := []domain.Coordinates{
		{Lat: 4.60, Lng: -74.08},
		{Lat: 4.61, Lng: -74.07},
		{Lat: 4.62, Lng: -74.09},
		{Lat: 10.40, Lng: -66.90},
		{Lat: 10.41, Lng: -66.91},
		{Lat: 10.42, Lng: -66.89},
	}

	labels := KMeansLabels(points, 2)
	if len(labels) != 6 {
		t.Fatalf("expected 6 labels, got %d", len(labels))
	}

	if labels[0] != labels[1] || labels[1] != labels[2] {
		t.Fatalf("first blob split across clusters: %v", labels)
	}
	if labels[3] != labels[4] || labels[4] != labels[5] {
		t.Fatalf("second blob split across clusters: %v", labels)
	}
	if labels[0] == labels[3] {
		t.Fatalf("blobs merged into one cluster: %v", labels)
	}
}

func TestKMeansLabelsDeterministic(t *testing.T) {
	points := []domain.Coordinates{
		{Lat: 1.0, Lng: 1.0},
		{Lat: 1.1, Lng: 0.9},
		{Lat: 5.0, Lng: 5.0},
		{Lat: 5.1, Lng: 4.9},
		{Lat: 9.0, Lng: 1.0},
		{Lat: 9.1, Lng: 0.8},
	}

	first := KMeansLabels(points, 3)
	for i := 0; i < 5; i++ {
		again := KMeansLabels(points, 3)
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("run %d: label[%d] = %d, want %d", i, j, again[j], first[j])
			}
		}
	}
}
