package ingest

import (
	"context"
	"fmt"

	"github.com/siliconops/ingestoor/pkg/store"
	"github.com/sirupsen/logrus"
)

// pdProcessor loads physical-design rows into the PD run table.
type pdProcessor struct {
	log   logrus.FieldLogger
	store store.Store
}

func newPDProcessor(log logrus.FieldLogger, st store.Store) *pdProcessor {
	return &pdProcessor{
		log:   log.WithField("component", "pd_processor"),
		store: st,
	}
}

func (p *pdProcessor) Domain() string { return store.DomainPD }

// Process ingests one batch of PD rows. Per-row failures are counted and
// logged with enough context to locate the source row; they never abort
// the remaining rows.
func (p *pdProcessor) Process(
	ctx context.Context, rows []Row, collectedBy uint,
) Result {
	var result Result

	for _, row := range rows {
		if err := p.processRow(ctx, row, collectedBy, &result); err != nil {
			result.Errors++

			p.log.WithError(err).WithFields(logrus.Fields{
				"project":    row.Get(FieldProject),
				"block":      row.Get(FieldBlockName),
				"experiment": row.Get(FieldExperiment),
			}).Error("Failed to ingest PD row")
		}
	}

	return result
}

func (p *pdProcessor) processRow(
	ctx context.Context, row Row, collectedBy uint, result *Result,
) error {
	projectName := row.Get(FieldProject)

	project, err := p.store.GetOrCreateProject(
		ctx,
		projectName,
		store.DomainIDPD,
		collectedBy,
		fmt.Sprintf("Project %s for %s", projectName, store.DomainName(store.DomainPD)),
	)
	if err != nil {
		return fmt.Errorf("resolving project: %w", err)
	}

	var userID *uint

	if name := row.Get(FieldUserName); name != "" {
		user, err := p.store.GetOrCreateUserByName(ctx, name)
		if err != nil {
			return fmt.Errorf("resolving user: %w", err)
		}

		userID = &user.ID
	}

	runEndTime := CoerceDate(row.Get(FieldRunEndTime))

	key := store.PDRunKey{
		ProjectID:  project.ID,
		BlockName:  row.Get(FieldBlockName),
		Experiment: row.Get(FieldExperiment),
		RunEndTime: runEndTime,
	}

	exists, err := p.store.HasPDRun(ctx, key)
	if err != nil {
		return fmt.Errorf("checking duplicate: %w", err)
	}

	if exists {
		result.Duplicates++

		p.log.WithFields(logrus.Fields{
			"project":    projectName,
			"block":      key.BlockName,
			"experiment": key.Experiment,
		}).Warn("Duplicate PD run, skipping")

		return nil
	}

	run := &store.PDRun{
		ProjectID:  project.ID,
		DomainID:   store.DomainIDPD,
		BlockName:  key.BlockName,
		Experiment: key.Experiment,
		RTLTag:     CoerceString(row.Get(FieldRTLTag)),
		UserID:     userID,

		RunDirectory: CoerceString(row.Get(FieldRunDirectory)),
		RunEndTime:   runEndTime,
		Stage:        CoerceString(row.Get(FieldStage)),

		InternalTiming:              CoerceString(row.Get("internal_timing")),
		InterfaceTiming:             CoerceString(row.Get("interface_timing")),
		MaxTranWNSNVP:               CoerceString(row.Get("max_tran_wns_nvp")),
		MaxCapWNSNVP:                CoerceString(row.Get("max_cap_wns_nvp")),
		Noise:                       CoerceString(row.Get("noise")),
		MPWMinPeriodDoubleSwitching: CoerceString(row.Get("mpw_min_period_double_switching")),
		CongestionDRCMetrics:        CoerceString(row.Get("congestion_drc_metrics")),
		AreaUM2:                     CoerceDecimal(row.Get("area_um2")),
		InstCount:                   CoerceInt(row.Get("inst_count")),
		Utilization:                 CoerceDecimal(row.Get("utilization")),
		LogsErrorsWarnings:          CoerceString(row.Get("logs_errors_warnings")),
		RunStatus:                   CoerceString(row.Get(FieldRunStatus)),
		RuntimeSeconds:              CoerceTimeToSeconds(row.Get(FieldRuntime)),
		AISummary:                   CoerceString(row.Get("ai_summary")),
		IRStatic:                    CoerceString(row.Get("ir_static")),
		EMPowerSignal:               CoerceString(row.Get("em_power_signal")),
		PVDRC:                       CoerceString(row.Get("pv_drc")),
		LVS:                         CoerceString(row.Get("lvs")),
		LEC:                         CoerceString(row.Get("lec")),

		CollectedBy: collectedBy,
	}

	if err := p.store.CreatePDRun(ctx, run); err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	result.Inserted++

	p.log.WithFields(logrus.Fields{
		"project":    projectName,
		"block":      key.BlockName,
		"experiment": key.Experiment,
	}).Debug("Inserted PD run")

	return nil
}
