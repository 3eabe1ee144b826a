package services

import (
	"context"
	"courier-route-service/internal/ports"
	"errors"
	"fmt"
	"time"
)

// Field events reported by the courier's device.
const (
	EventStart  = "start"
	EventFinish = "finish"
)

// ErrRouteNotFound is returned when a field event references an unknown
// route.
var ErrRouteNotFound = errors.New("route not found")

// ErrUnknownEvent is returned for an event name other than start/finish.
var ErrUnknownEvent = errors.New("unknown route event")

// RecordRouteEvent applies a field timestamp to a route. A start event
// records when the courier set off; a finish event records delivery,
// derives the actual duration, and classifies the delay against the
// estimate.
func RecordRouteEvent(ctx context.Context, repo ports.RouteRepository, routeID int, event string, ts time.Time) error {
	rt, err := repo.ByID(ctx, routeID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return fmt.Errorf("route event: route %d: %w", routeID, ErrRouteNotFound)
		}
		return fmt.Errorf("route event: load route %d: %w", routeID, err)
	}

	switch event {
	case EventStart:
		if err := repo.MarkStarted(ctx, routeID, ts); err != nil {
			return fmt.Errorf("route event: mark route %d started: %w", routeID, err)
		}

	case EventFinish:
		rt.FinishedAt = &ts
		rt.RecomputeActualDuration()
		rt.InferDelayLabel()

		if err := repo.MarkFinished(ctx, routeID, ts, rt.ActualMinutes, rt.DelayLabel); err != nil {
			return fmt.Errorf("route event: mark route %d finished: %w", routeID, err)
		}

	default:
		return fmt.Errorf("route event: %q: %w", event, ErrUnknownEvent)
	}

	return nil
}
