package export

import (
	"context"
	"errors"
	"fmt"

	"map-atlas/core/logger"
	"map-atlas/core/reconcile"
	"map-atlas/core/storage"
	"map-atlas/core/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrStorageDisabled is returned when no storage client is configured.
var ErrStorageDisabled = errors.New("storage export disabled")

// ErrDatabaseDisabled is returned when no database connection is available.
var ErrDatabaseDisabled = errors.New("database export disabled")

// ErrNoTarget is returned by Drift when neither storage nor a database is configured.
var ErrNoTarget = errors.New("no export target configured")

// Source provides the snapshot to export.
type Source interface {
	Current() (*store.Snapshot, error)
}

// Service publishes atlas snapshots to object storage and SQL.
type Service struct {
	source Source
	client storage.Client
	bucket string
	region string
	db     *gorm.DB
	cache  *reconcile.Cache
	logger *zap.Logger
}

// NewService creates a new export service. client and db may be nil, which
// disables the matching target.
func NewService(source Source, client storage.Client, cfg storage.Config, db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{
		source: source,
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
		db:     db,
		cache:  reconcile.NewCache(),
		logger: logger,
	}
}

// ToStorage uploads the current snapshot under atlas/<name>/.
func (s *Service) ToStorage(ctx context.Context, name string) (*StorageResult, error) {
	if s.client == nil {
		return nil, ErrStorageDisabled
	}
	if !ValidName(name) {
		return nil, fmt.Errorf("invalid export name %q", name)
	}
	snap, err := s.source.Current()
	if err != nil {
		return nil, err
	}

	res, err := s.toStorage(ctx, snap, name)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Atlas exported to storage",
		zap.String("bucket", res.Bucket),
		zap.String("prefix", res.Prefix),
		zap.Int("objects", len(res.Objects)),
		zap.Int("uploaded", len(res.Uploaded)),
		zap.Int("unchanged", res.Unchanged),
		zap.Int("removed", len(res.Removed)),
	)
	return res, nil
}

// ToDatabase writes the current snapshot into the atlas tables. With migrate
// set the tables are created or updated first.
func (s *Service) ToDatabase(ctx context.Context, migrate bool) (*DatabaseResult, error) {
	if s.db == nil {
		return nil, ErrDatabaseDisabled
	}
	snap, err := s.source.Current()
	if err != nil {
		return nil, err
	}

	if migrate {
		if err := Migrate(s.db.WithContext(ctx)); err != nil {
			return nil, err
		}
	}

	upserted, deleted, err := writeRows(ctx, s.db, BuildRows(snap.Model, snap.Localise))
	for _, t := range tableNames {
		s.cache.Invalidate(t)
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("Atlas exported to database",
		logger.Seq(snap.Seq),
		zap.Any("upserted", upserted),
		zap.Any("deleted", deleted),
	)
	return &DatabaseResult{Seq: snap.Seq, Upserted: upserted, Deleted: deleted, Migrated: migrate}, nil
}

// VerifyDatabase returns the model columns missing from the atlas tables.
func (s *Service) VerifyDatabase(ctx context.Context) (map[string][]string, error) {
	if s.db == nil {
		return nil, ErrDatabaseDisabled
	}
	return VerifySchema(s.db.WithContext(ctx))
}
