package dashboard

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jwulff/abyss-go/internal/abyss"
	"github.com/jwulff/abyss-go/internal/domain"
	"github.com/jwulff/abyss-go/internal/homa"
	"github.com/jwulff/abyss-go/internal/logging"
	"github.com/jwulff/abyss-go/internal/storage"
	"github.com/jwulff/abyss-go/internal/uigf"
)

// TableLoader produces the utilization table served by the dashboard.
type TableLoader interface {
	Load(ctx context.Context) (domain.UtilizationTable, error)
}

// Loader fetches the name dictionary, the per-floor rates and the current
// schedule concurrently and merges them. When Store is set every successful
// load is archived and fetch outcomes are recorded.
type Loader struct {
	Homa   *homa.Client
	UIGF   *uigf.Client
	Lang   string
	Store  storage.Store
	Logger *zap.Logger
}

var _ TableLoader = (*Loader)(nil)

// NewLoader creates a loader. store may be nil.
func NewLoader(h *homa.Client, u *uigf.Client, lang string, store storage.Store, log *zap.Logger) *Loader {
	return &Loader{Homa: h, UIGF: u, Lang: lang, Store: store, Logger: logging.OrNop(log)}
}

// Load fetches and merges the current utilization table.
func (l *Loader) Load(ctx context.Context) (domain.UtilizationTable, error) {
	var (
		names    map[int]string
		floors   []homa.FloorRanks
		overview homa.Overview
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		names, err = l.UIGF.FetchNames(gctx, l.Lang)
		l.recordFetch(ctx, domain.SourceNames, err, len(names))
		return err
	})
	g.Go(func() error {
		var err error
		floors, err = l.Homa.FetchUtilizationRate(gctx)
		l.recordFetch(ctx, domain.SourceUtilization, err, len(floors))
		return err
	})
	g.Go(func() error {
		var err error
		overview, err = l.Homa.FetchOverview(gctx)
		l.recordFetch(ctx, domain.SourceOverview, err, overview.ScheduleID)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.UtilizationTable{}, fmt.Errorf("load utilization: %w", err)
	}

	result := abyss.MergeFloors(overview.ScheduleID, floors, names)
	if len(result.Unknown) > 0 {
		l.Logger.Warn("items missing from name dictionary", zap.Ints("items", result.Unknown))
	}

	if l.Store != nil {
		snapshot := storage.NewSnapshot(result.Table)
		if err := l.Store.SaveSnapshot(ctx, snapshot); err != nil {
			l.Logger.Warn("failed to archive snapshot", zap.Error(err))
		} else {
			l.Logger.Debug("archived snapshot",
				zap.String("id", snapshot.ID),
				zap.Int("schedule", snapshot.Schedule),
			)
			if err := storage.MarkArchived(ctx, l.Store, snapshot.Schedule); err != nil {
				l.Logger.Warn("failed to mark archived schedule", zap.Error(err))
			}
		}
	}

	l.Logger.Info("loaded utilization",
		zap.Int("schedule", result.Table.Schedule),
		zap.Int("rows", result.Table.Len()),
	)
	return result.Table, nil
}

// recordFetch persists the outcome of one source fetch when a store is set.
func (l *Loader) recordFetch(ctx context.Context, source string, err error, data any) {
	if l.Store == nil {
		return
	}

	state, getErr := l.Store.GetFetchState(ctx, source)
	if getErr != nil {
		if !storage.IsNotFound(getErr) {
			l.Logger.Warn("failed to read fetch state", zap.String("source", source), zap.Error(getErr))
		}
		state = domain.NewFetchState(source)
	}

	if err != nil {
		state.RecordError(err.Error())
	} else {
		state.RecordSuccess(data)
	}

	if saveErr := l.Store.SaveFetchState(ctx, state); saveErr != nil {
		l.Logger.Warn("failed to save fetch state", zap.String("source", source), zap.Error(saveErr))
	}
}
