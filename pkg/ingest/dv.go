package ingest

import (
	"context"
	"fmt"

	"github.com/siliconops/ingestoor/pkg/store"
	"github.com/sirupsen/logrus"
)

// dvProcessor loads design-verification rows into the DV run table.
type dvProcessor struct {
	log   logrus.FieldLogger
	store store.Store
}

func newDVProcessor(log logrus.FieldLogger, st store.Store) *dvProcessor {
	return &dvProcessor{
		log:   log.WithField("component", "dv_processor"),
		store: st,
	}
}

func (p *dvProcessor) Domain() string { return store.DomainDV }

func (p *dvProcessor) Process(
	ctx context.Context, rows []Row, collectedBy uint,
) Result {
	var result Result

	for _, row := range rows {
		if err := p.processRow(ctx, row, collectedBy, &result); err != nil {
			result.Errors++

			p.log.WithError(err).WithFields(logrus.Fields{
				"project": row.Get(FieldProject),
				"module":  row.Get(FieldModule),
			}).Error("Failed to ingest DV row")
		}
	}

	return result
}

func (p *dvProcessor) processRow(
	ctx context.Context, row Row, collectedBy uint, result *Result,
) error {
	projectName := row.Get(FieldProject)

	project, err := p.store.GetOrCreateProject(
		ctx,
		projectName,
		store.DomainIDDV,
		collectedBy,
		fmt.Sprintf("Project %s for %s", projectName, store.DomainName(store.DomainDV)),
	)
	if err != nil {
		return fmt.Errorf("resolving project: %w", err)
	}

	module := row.Get(FieldModule)

	exists, err := p.store.HasDVRun(ctx, project.ID, module)
	if err != nil {
		return fmt.Errorf("checking duplicate: %w", err)
	}

	if exists {
		result.Duplicates++

		p.log.WithFields(logrus.Fields{
			"project": projectName,
			"module":  module,
		}).Warn("Duplicate DV record, skipping")

		return nil
	}

	run := &store.DVRun{
		ProjectID: project.ID,
		DomainID:  store.DomainIDDV,
		Module:    module,

		TBDevTotal:  CoerceInt(row.Get("tb_dev_total")),
		TBDevCoded:  CoerceInt(row.Get("tb_dev_coded")),
		TestTotal:   CoerceInt(row.Get("test_total")),
		TestCoded:   CoerceInt(row.Get("test_coded")),
		TestPass:    CoerceInt(row.Get("test_pass")),
		TestFail:    CoerceInt(row.Get("test_fail")),
		AssertTotal: CoerceInt(row.Get("assert_total")),
		AssertCoded: CoerceInt(row.Get("assert_coded")),
		AssertPass:  CoerceInt(row.Get("assert_pass")),
		AssertFail:  CoerceInt(row.Get("assert_fail")),

		CodeCoveragePercent:       CoerceDecimal(row.Get("code_coverage_percent")),
		FunctionalCoveragePercent: CoerceDecimal(row.Get("functional_coverage_percent")),

		ReqTotal:     CoerceInt(row.Get("req_total")),
		ReqCovered:   CoerceInt(row.Get("req_covered")),
		ReqUncovered: CoerceInt(row.Get("req_uncovered")),
		BlockStatus:  CoerceString(row.Get("block_status")),

		CollectedBy: collectedBy,
	}

	if err := p.store.CreateDVRun(ctx, run); err != nil {
		return fmt.Errorf("inserting record: %w", err)
	}

	result.Inserted++

	p.log.WithFields(logrus.Fields{
		"project": projectName,
		"module":  module,
	}).Debug("Inserted DV record")

	return nil
}
