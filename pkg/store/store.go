package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/siliconops/ingestoor/pkg/config"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store provides persistence for ingested run metadata.
type Store interface {
	Start(ctx context.Context) error
	Stop() error

	// Project resolution.
	GetOrCreateProject(ctx context.Context, name string, domainID, createdBy uint, description string) (*Project, error)
	ListProjects(ctx context.Context) ([]Project, error)

	// User resolution.
	GetOrCreateUserByName(ctx context.Context, name string) (*User, error)

	// PD run records.
	HasPDRun(ctx context.Context, key PDRunKey) (bool, error)
	CreatePDRun(ctx context.Context, run *PDRun) error
	ListPDRuns(ctx context.Context, limit int) ([]PDRun, error)

	// DV run records.
	HasDVRun(ctx context.Context, projectID uint, module string) (bool, error)
	CreateDVRun(ctx context.Context, run *DVRun) error
	ListDVRuns(ctx context.Context, limit int) ([]DVRun, error)
}

// Compile-time interface check.
var _ Store = (*store)(nil)

type store struct {
	log logrus.FieldLogger
	cfg *config.DatabaseConfig
	db  *gorm.DB
}

// NewStore creates a new Store backed by the configured database driver.
func NewStore(
	log logrus.FieldLogger,
	cfg *config.DatabaseConfig,
) Store {
	return &store{
		log: log.WithField("component", "store"),
		cfg: cfg,
	}
}

// Start opens the database connection, runs migrations, and seeds the
// fixed domain set.
func (s *store) Start(ctx context.Context) error {
	var dialector gorm.Dialector

	gormCfg := &gorm.Config{
		Logger: logger.Discard,
	}

	switch s.cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(s.cfg.SQLite.Path)
	case "postgres":
		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			s.cfg.Postgres.Host,
			s.cfg.Postgres.Port,
			s.cfg.Postgres.User,
			s.cfg.Postgres.Password,
			s.cfg.Postgres.Database,
			s.cfg.Postgres.SSLMode,
		)
		dialector = postgres.Open(dsn)
	default:
		return fmt.Errorf("unsupported database driver: %s", s.cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	s.db = db

	if err := s.db.WithContext(ctx).AutoMigrate(
		&Domain{},
		&User{},
		&Project{},
		&PDRun{},
		&DVRun{},
	); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	if err := s.seedDomains(ctx); err != nil {
		return fmt.Errorf("seeding domains: %w", err)
	}

	s.log.WithField("driver", s.cfg.Driver).Info("Database connected")

	return nil
}

// Stop closes the underlying database connection.
func (s *store) Stop() error {
	if s.db == nil {
		return nil
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("getting underlying db: %w", err)
	}

	return sqlDB.Close()
}

// seedDomains upserts the fixed domain rows.
func (s *store) seedDomains(ctx context.Context) error {
	for _, d := range seedDomains {
		domain := d
		if err := s.db.WithContext(ctx).
			Where("id = ?", domain.ID).
			FirstOrCreate(&domain).Error; err != nil {
			return fmt.Errorf("seeding domain %q: %w", d.Code, err)
		}
	}

	return nil
}

// --- Projects ---

// GetOrCreateProject looks up a project by (name, domain) and creates it
// when absent. The unique index on (project_name, domain_id) is the real
// guard against a concurrent create racing the lookup; on a constraint
// violation the lookup is retried once.
func (s *store) GetOrCreateProject(
	ctx context.Context,
	name string,
	domainID, createdBy uint,
	description string,
) (*Project, error) {
	var project Project

	err := s.db.WithContext(ctx).
		Where("project_name = ? AND domain_id = ?", name, domainID).
		First(&project).Error
	if err == nil {
		return &project, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("looking up project %q: %w", name, err)
	}

	project = Project{
		ProjectName: name,
		DomainID:    domainID,
		CreatedBy:   createdBy,
		Description: description,
		Status:      "active",
	}

	if err := s.db.WithContext(ctx).Create(&project).Error; err != nil {
		// A concurrent insert may have won the race; re-read.
		var existing Project
		if lookupErr := s.db.WithContext(ctx).
			Where("project_name = ? AND domain_id = ?", name, domainID).
			First(&existing).Error; lookupErr == nil {
			return &existing, nil
		}

		return nil, fmt.Errorf("creating project %q: %w", name, err)
	}

	s.log.WithFields(logrus.Fields{
		"project": name,
		"domain":  domainID,
	}).Info("Created project")

	return &project, nil
}

func (s *store) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := s.db.WithContext(ctx).
		Order("id ASC").
		Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	return projects, nil
}

// --- Users ---

// GetOrCreateUserByName resolves a user by display name, creating a
// minimal placeholder record when absent.
func (s *store) GetOrCreateUserByName(
	ctx context.Context, name string,
) (*User, error) {
	user := User{Name: name}

	if err := s.db.WithContext(ctx).
		Where("name = ?", name).
		FirstOrCreate(&user).Error; err != nil {
		return nil, fmt.Errorf("resolving user %q: %w", name, err)
	}

	return &user, nil
}

// --- PD runs ---

// HasPDRun reports whether a non-deleted PD run matching the natural key
// exists. A nil RunEndTime matches only rows where run_end_time IS NULL.
func (s *store) HasPDRun(ctx context.Context, key PDRunKey) (bool, error) {
	query := s.db.WithContext(ctx).
		Model(&PDRun{}).
		Where("project_id = ? AND block_name = ? AND experiment = ? AND is_deleted = ?",
			key.ProjectID, key.BlockName, key.Experiment, false)

	if key.RunEndTime != nil {
		query = query.Where("run_end_time = ?", *key.RunEndTime)
	} else {
		query = query.Where("run_end_time IS NULL")
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("checking pd run duplicate: %w", err)
	}

	return count > 0, nil
}

func (s *store) CreatePDRun(ctx context.Context, run *PDRun) error {
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("creating pd run: %w", err)
	}

	return nil
}

func (s *store) ListPDRuns(ctx context.Context, limit int) ([]PDRun, error) {
	var runs []PDRun

	query := s.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("listing pd runs: %w", err)
	}

	return runs, nil
}

// --- DV runs ---

// HasDVRun reports whether a non-deleted DV record exists for the module.
func (s *store) HasDVRun(
	ctx context.Context, projectID uint, module string,
) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&DVRun{}).
		Where("project_id = ? AND module = ? AND is_deleted = ?",
			projectID, module, false).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("checking dv run duplicate: %w", err)
	}

	return count > 0, nil
}

func (s *store) CreateDVRun(ctx context.Context, run *DVRun) error {
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("creating dv run: %w", err)
	}

	return nil
}

func (s *store) ListDVRuns(ctx context.Context, limit int) ([]DVRun, error) {
	var runs []DVRun

	query := s.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("listing dv runs: %w", err)
	}

	return runs, nil
}
