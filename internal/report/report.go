// Package report writes the static schedule and uploader HTML reports.
package report

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jwulff/abyss-go/internal/abyss"
	"github.com/jwulff/abyss-go/internal/domain"
	"github.com/jwulff/abyss-go/internal/logging"
	"github.com/jwulff/abyss-go/internal/metrics"
	"github.com/jwulff/abyss-go/internal/records"
	"github.com/jwulff/abyss-go/internal/render"
)

// Report file names.
const (
	ScheduleBarFile  = "user_per_schedule_bar.html"
	UploaderInfoFile = "uploader_info.html"
)

// Source provides the upload database rows the reports are built from.
type Source interface {
	Overviews(ctx context.Context) ([]domain.OverviewStat, error)
	Uploads(ctx context.Context) ([]domain.UploadRecord, error)
}

var _ Source = (*records.Repository)(nil)

// Reporter writes report pages to OutputDir.
type Reporter struct {
	Records   Source
	OutputDir string
	CDN       string
	Logger    *zap.Logger
}

// NewReporter creates a reporter. A nil logger discards output.
func NewReporter(src Source, outputDir, cdn string, log *zap.Logger) *Reporter {
	return &Reporter{Records: src, OutputDir: outputDir, CDN: cdn, Logger: logging.OrNop(log)}
}

// ScheduleBar writes the upload totals of the most recent schedules. It
// returns an empty path without error when there are no overview rows.
func (r *Reporter) ScheduleBar(ctx context.Context) (string, error) {
	stats, err := r.Records.Overviews(ctx)
	if errors.Is(err, records.ErrNoRows) {
		r.Logger.Warn("no overview rows, skipping schedule report")
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load overviews: %w", err)
	}

	recent := abyss.RecentSchedules(stats, abyss.RecentScheduleCount)
	path, err := render.WriteFile(r.OutputDir, ScheduleBarFile, render.PageOptions{
		Title:   render.ScheduleBarTitle,
		CDN:     r.CDN,
		Figures: []render.Figure{render.ScheduleBar(recent)},
	})
	if err != nil {
		return "", err
	}

	metrics.RecordReport(ScheduleBarFile)
	r.Logger.Info("wrote report",
		zap.String("path", path),
		zap.Int("schedules", len(recent)),
	)
	return path, nil
}

// UploaderInfo writes the UID/time scatter and the UID group counts.
func (r *Reporter) UploaderInfo(ctx context.Context) (string, error) {
	uploads, err := r.Records.Uploads(ctx)
	if err != nil {
		return "", fmt.Errorf("load uploads: %w", err)
	}

	groups := abyss.GroupUploads(uploads)
	if groups.Skipped > 0 {
		r.Logger.Warn("skipped uploads outside known regions or uploaders", zap.Int("count", groups.Skipped))
	}

	path, err := render.WriteFile(r.OutputDir, UploaderInfoFile, render.PageOptions{
		Title: render.UploaderScatterTitle,
		CDN:   r.CDN,
		Figures: []render.Figure{
			render.UploaderScatter(groups),
			render.PrefixCountBar(abyss.CountByPrefix(uploads)),
		},
	})
	if err != nil {
		return "", err
	}

	metrics.RecordReport(UploaderInfoFile)
	r.Logger.Info("wrote report",
		zap.String("path", path),
		zap.Int("uploads", len(uploads)),
	)
	return path, nil
}

// RunAll writes every report and returns the paths written.
func (r *Reporter) RunAll(ctx context.Context) ([]string, error) {
	var paths []string

	path, err := r.ScheduleBar(ctx)
	if err != nil {
		return paths, err
	}
	if path != "" {
		paths = append(paths, path)
	}

	path, err = r.UploaderInfo(ctx)
	if err != nil {
		return paths, err
	}
	return append(paths, path), nil
}
