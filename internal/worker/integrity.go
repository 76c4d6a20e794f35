package worker

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/carelink/carelink-api/internal/repository"
)

// IntegrityWorker periodically scans assignments for dangling patient or
// doctor references. Orphans are reported, never deleted: removing an
// orphaned assignment stays an explicit admin action.
type IntegrityWorker struct {
	mappings repository.MappingRepository
	patients repository.PatientRepository
	doctors  repository.DoctorRepository
	interval time.Duration
	logger   *zerolog.Logger
	orphans  prometheus.Gauge
}

func NewIntegrityWorker(
	mappings repository.MappingRepository,
	patients repository.PatientRepository,
	doctors repository.DoctorRepository,
	interval time.Duration,
	logger *zerolog.Logger,
) *IntegrityWorker {
	return &IntegrityWorker{
		mappings: mappings,
		patients: patients,
		doctors:  doctors,
		interval: interval,
		logger:   logger,
		orphans: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "carelink",
			Name:      "orphaned_mappings",
			Help:      "Number of assignments referencing a deleted patient or doctor",
		}),
	}
}

func (w *IntegrityWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.scan(ctx); err != nil {
				w.logger.Error().Err(err).Msg("mapping integrity scan failed")
			}
		}
	}
}

func (w *IntegrityWorker) scan(ctx context.Context) error {
	mappings, err := w.mappings.List(ctx)
	if err != nil {
		return err
	}

	orphaned := 0
	for _, m := range mappings {
		missing := false

		if _, err := w.patients.Get(ctx, m.PatientID); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			missing = true
		}
		if _, err := w.doctors.Get(ctx, m.DoctorID); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			missing = true
		}

		if missing {
			orphaned++
			w.logger.Warn().
				Str("mapping_id", m.ID.Hex()).
				Str("patient_id", m.PatientID.Hex()).
				Str("doctor_id", m.DoctorID.Hex()).
				Msg("assignment references a deleted record")
		}
	}

	w.orphans.Set(float64(orphaned))
	return nil
}
