package services

import (
	"context"
	"courier-route-service/internal/domain"
	"courier-route-service/internal/platform/obs"
	"courier-route-service/internal/ports"
	"fmt"
	"log"
)

// defaultReclusterK matches the zone count the delay model was trained
// against.
const defaultReclusterK = 6

// ReclusterFinishedRoutes recomputes zone cluster labels over the end
// coordinates of all finished routes and persists the new assignment.
// Intended as a periodic maintenance job, not part of the request path.
//
// With fewer finished routes than clusters the job is a no-op: there is
// no stable partition worth persisting.
func ReclusterFinishedRoutes(ctx context.Context, repo ports.RouteRepository, k int) (err error) {
	defer obs.Time(ctx, "recluster.finished")(&err)

	if k <= 0 {
		k = defaultReclusterK
	}

	routes, err := repo.ListFinished(ctx)
	if err != nil {
		return fmt.Errorf("recluster: list finished routes: %w", err)
	}

	if len(routes) < k {
		log.Printf("recluster: %d finished routes < %d clusters, skipping", len(routes), k)
		return nil
	}

	points := make([]domain.Coordinates, len(routes))
	for i, rt := range routes {
		points[i] = rt.End
	}

	labels := KMeansLabels(points, k)

	assignment := make(map[int]int, len(routes))
	for i, rt := range routes {
		assignment[rt.RouteID] = labels[i]
	}

	if err := repo.UpdateClusterLabels(ctx, assignment); err != nil {
		return fmt.Errorf("recluster: persist labels: %w", err)
	}

	return nil
}
