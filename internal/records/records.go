// Package records reads abyss uploads and schedule summaries from the
// upload database. It never writes.
package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	mysqlDriver "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jwulff/abyss-go/internal/config"
	"github.com/jwulff/abyss-go/internal/domain"
	"github.com/jwulff/abyss-go/internal/logging"
	"github.com/jwulff/abyss-go/internal/metrics"
)

// ErrNoRows is returned when the overview query finds nothing.
var ErrNoRows = errors.New("records: no overview rows")

// OverviewName is the statistics row name holding a schedule summary.
const OverviewName = "Overview"

type statistic struct {
	ID   int64  `gorm:"column:Id;primaryKey"`
	Name string `gorm:"column:Name"`
	Data string `gorm:"column:Data"`
}

func (statistic) TableName() string { return "spiral_abysses_statistics" }

type record struct {
	PrimaryID  int64  `gorm:"column:PrimaryId;primaryKey"`
	UID        string `gorm:"column:Uid"`
	UploadTime int64  `gorm:"column:UploadTime"`
	Uploader   string `gorm:"column:Uploader"`
}

func (record) TableName() string { return "records" }

type spiralAbyss struct {
	PrimaryID int64 `gorm:"column:PrimaryId;primaryKey"`
	RecordID  int64 `gorm:"column:RecordId"`
}

func (spiralAbyss) TableName() string { return "spiral_abysses" }

// uploadRow is one joined row. Record columns are nil when an abyss row has
// no matching record.
type uploadRow struct {
	UID        *string `gorm:"column:Uid"`
	UploadTime *int64  `gorm:"column:UploadTime"`
	Uploader   *string `gorm:"column:Uploader"`
}

// Repository reads the upload database.
type Repository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewRepository wraps an open gorm connection.
func NewRepository(db *gorm.DB, log *zap.Logger) *Repository {
	return &Repository{db: db, logger: logging.OrNop(log)}
}

// Open connects to MySQL and verifies the connection.
func Open(cfg config.MySQLConfig, log *zap.Logger) (*Repository, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	parsed, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid mysql dsn: %w", err)
	}

	db, err := gorm.Open(mysqlDriver.New(mysqlDriver.Config{
		DSN:       parsed.FormatDSN(),
		DSNConfig: parsed,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open gorm mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	configurePool(sqlDB)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	return NewRepository(db, log), nil
}

func configurePool(db *sql.DB) {
	db.SetConnMaxLifetime(60 * time.Minute)
	db.SetMaxIdleConns(10)
	db.SetMaxOpenConns(25)
}

// Close releases the underlying connection pool.
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Overviews returns every stored schedule summary in table order.
func (r *Repository) Overviews(ctx context.Context) ([]domain.OverviewStat, error) {
	var rows []statistic
	start := time.Now()
	err := r.db.WithContext(ctx).
		Model(&statistic{}).
		Select("Data").
		Where("Name = ?", OverviewName).
		Find(&rows).Error
	metrics.ObserveFetch(domain.SourceRecords, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query overviews: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	stats := make([]domain.OverviewStat, 0, len(rows))
	for _, row := range rows {
		var stat domain.OverviewStat
		if err := json.Unmarshal([]byte(row.Data), &stat); err != nil {
			return nil, fmt.Errorf("failed to parse overview data: %w", err)
		}
		stats = append(stats, stat)
	}
	return stats, nil
}

// Uploads returns one record per abyss upload. Abyss rows without a matching
// record are skipped.
func (r *Repository) Uploads(ctx context.Context) ([]domain.UploadRecord, error) {
	var rows []uploadRow
	start := time.Now()
	err := r.db.WithContext(ctx).
		Table(spiralAbyss{}.TableName()).
		Select("records.Uid, records.UploadTime, records.Uploader").
		Joins("LEFT JOIN records ON records.PrimaryId = spiral_abysses.RecordId").
		Order("spiral_abysses.PrimaryId").
		Scan(&rows).Error
	metrics.ObserveFetch(domain.SourceRecords, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query uploads: %w", err)
	}

	uploads := make([]domain.UploadRecord, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		if row.UID == nil || row.UploadTime == nil || row.Uploader == nil {
			skipped++
			continue
		}
		uploads = append(uploads, domain.UploadRecord{
			UID:        *row.UID,
			UploadTime: time.Unix(*row.UploadTime, 0),
			Uploader:   domain.Uploader(*row.Uploader),
		})
	}
	if skipped > 0 {
		r.logger.Warn("skipped uploads without a record", zap.Int("count", skipped))
	}
	return uploads, nil
}
