package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jwulff/abyss-go/internal/domain"
)

// ConfigLastSchedule is the config key holding the most recently archived schedule.
const ConfigLastSchedule = "last_archived_schedule"

// Status is a summary of the archive and of the latest fetch per source.
type Status struct {
	LastSchedule int // 0 when nothing is archived
	Sources      []*domain.FetchState
}

// Healthy reports whether every source's last fetch succeeded.
func (s Status) Healthy() bool {
	for _, src := range s.Sources {
		if !src.Healthy() {
			return false
		}
	}
	return len(s.Sources) > 0
}

// MarkArchived records schedule as the most recently archived one.
func MarkArchived(ctx context.Context, store Store, schedule int) error {
	if err := store.SetConfig(ctx, ConfigLastSchedule, strconv.Itoa(schedule)); err != nil {
		return fmt.Errorf("save %s: %w", ConfigLastSchedule, err)
	}
	return nil
}

// ReadStatus loads the last archived schedule and the fetch state of every
// domain.FetchSources entry. Sources never fetched get an empty state.
func ReadStatus(ctx context.Context, store Store) (Status, error) {
	var status Status

	raw, err := store.GetConfig(ctx, ConfigLastSchedule)
	switch {
	case IsNotFound(err):
	case err != nil:
		return Status{}, fmt.Errorf("read %s: %w", ConfigLastSchedule, err)
	default:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Status{}, fmt.Errorf("invalid %s %q: %w", ConfigLastSchedule, raw, err)
		}
		status.LastSchedule = n
	}

	for _, source := range domain.FetchSources {
		state, err := store.GetFetchState(ctx, source)
		if IsNotFound(err) {
			state = domain.NewFetchState(source)
		} else if err != nil {
			return Status{}, fmt.Errorf("read fetch state %s: %w", source, err)
		}
		status.Sources = append(status.Sources, state)
	}
	return status, nil
}

// PruneSnapshots deletes snapshots fetched before the cutoff. When the last
// archived schedule is among them its marker is cleared.
func PruneSnapshots(ctx context.Context, store Store, before time.Time) (int, error) {
	n, err := store.DeleteSnapshotsBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}

	raw, err := store.GetConfig(ctx, ConfigLastSchedule)
	if IsNotFound(err) {
		return n, nil
	}
	if err != nil {
		return n, fmt.Errorf("read %s: %w", ConfigLastSchedule, err)
	}
	schedule, convErr := strconv.Atoi(raw)
	if convErr == nil {
		_, err = store.GetSnapshot(ctx, schedule)
		if err == nil {
			return n, nil
		}
		if !IsNotFound(err) {
			return n, err
		}
	}
	if err := store.DeleteConfig(ctx, ConfigLastSchedule); err != nil {
		return n, fmt.Errorf("clear %s: %w", ConfigLastSchedule, err)
	}
	return n, nil
}
