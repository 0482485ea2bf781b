package store

import (
	"time"
)

// Run status values accepted in the run_status column.
const (
	RunStatusPass              = "pass"
	RunStatusFail              = "fail"
	RunStatusContinueWithError = "continue_with_error"
	RunStatusRunning           = "running"
	RunStatusAborted           = "aborted"
)

// Project represents an EDA project within a single domain. Projects are
// created lazily when an ingested row names one that does not exist yet.
// The (project_name, domain_id) unique index is the authoritative guard
// against concurrent duplicate creation.
type Project struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProjectName string    `gorm:"uniqueIndex:idx_projects_name_domain;not null" json:"project_name"`
	DomainID    uint      `gorm:"uniqueIndex:idx_projects_name_domain;not null" json:"domain_id"`
	CreatedBy   uint      `json:"created_by"`
	Description string    `json:"description"`
	Status      string    `gorm:"not null;default:active" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// User is a minimal user reference. Ingestion creates placeholder users
// when a CSV row names one that is not present yet.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// PDRun is one physical-design run record. The natural key for duplicate
// detection is (project_id, block_name, experiment, run_end_time), scoped
// to rows where is_deleted = false.
type PDRun struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	ProjectID  uint    `gorm:"not null;index:idx_pd_runs_natural" json:"project_id"`
	DomainID   uint    `gorm:"not null" json:"domain_id"`
	BlockName  string  `gorm:"not null;index:idx_pd_runs_natural" json:"block_name"`
	Experiment string  `gorm:"not null;index:idx_pd_runs_natural" json:"experiment"`
	RTLTag     *string `json:"rtl_tag"`

	// Normalized owner reference. The denormalized user_name column from
	// the older schema is not carried.
	UserID *uint `json:"user_id"`

	RunDirectory *string    `json:"run_directory"`
	RunEndTime   *time.Time `gorm:"index:idx_pd_runs_natural" json:"run_end_time"`
	Stage        *string    `json:"stage"`

	InternalTiming              *string  `json:"internal_timing"`
	InterfaceTiming             *string  `json:"interface_timing"`
	MaxTranWNSNVP               *string  `json:"max_tran_wns_nvp"`
	MaxCapWNSNVP                *string  `json:"max_cap_wns_nvp"`
	Noise                       *string  `json:"noise"`
	MPWMinPeriodDoubleSwitching *string  `json:"mpw_min_period_double_switching"`
	CongestionDRCMetrics        *string  `json:"congestion_drc_metrics"`
	AreaUM2                     *float64 `json:"area_um2"`
	InstCount                   *int64   `json:"inst_count"`
	Utilization                 *float64 `json:"utilization"`
	LogsErrorsWarnings          *string  `json:"logs_errors_warnings"`
	RunStatus                   *string  `json:"run_status"`
	RuntimeSeconds              *int64   `json:"runtime_seconds"`
	AISummary                   *string  `json:"ai_summary"`
	IRStatic                    *string  `json:"ir_static"`
	EMPowerSignal               *string  `json:"em_power_signal"`
	PVDRC                       *string  `json:"pv_drc"`
	LVS                         *string  `json:"lvs"`
	LEC                         *string  `json:"lec"`

	CollectedBy uint      `gorm:"not null" json:"collected_by"`
	IsDeleted   bool      `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DVRun is one design-verification record per module. The natural key for
// duplicate detection is (project_id, module), scoped to rows where
// is_deleted = false.
type DVRun struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProjectID uint   `gorm:"not null;index:idx_dv_runs_natural" json:"project_id"`
	DomainID  uint   `gorm:"not null" json:"domain_id"`
	Module    string `gorm:"not null;index:idx_dv_runs_natural" json:"module"`

	TBDevTotal  *int64 `json:"tb_dev_total"`
	TBDevCoded  *int64 `json:"tb_dev_coded"`
	TestTotal   *int64 `json:"test_total"`
	TestCoded   *int64 `json:"test_coded"`
	TestPass    *int64 `json:"test_pass"`
	TestFail    *int64 `json:"test_fail"`
	AssertTotal *int64 `json:"assert_total"`
	AssertCoded *int64 `json:"assert_coded"`
	AssertPass  *int64 `json:"assert_pass"`
	AssertFail  *int64 `json:"assert_fail"`

	CodeCoveragePercent       *float64 `json:"code_coverage_percent"`
	FunctionalCoveragePercent *float64 `json:"functional_coverage_percent"`

	ReqTotal     *int64  `json:"req_total"`
	ReqCovered   *int64  `json:"req_covered"`
	ReqUncovered *int64  `json:"req_uncovered"`
	BlockStatus  *string `json:"block_status"`

	CollectedBy uint      `gorm:"not null" json:"collected_by"`
	IsDeleted   bool      `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PDRunKey is the natural key for PD duplicate detection.
type PDRunKey struct {
	ProjectID  uint
	BlockName  string
	Experiment string
	RunEndTime *time.Time
}
