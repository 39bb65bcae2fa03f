package cron

import (
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sahilchouksey/degreefyd-api/services"
)

// TokenPruner drops expired revocations. Stores with native expiry need no pruning.
type TokenPruner interface {
	Prune() int
}

// JobRun records the latest execution of a job
type JobRun struct {
	Job         string    `json:"job"`
	Status      string    `json:"status"`
	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `json:"completedAt,omitempty"`
	Message     string    `json:"message,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron     *cron.Cron
	colleges *services.CollegeService
	pruner   TokenPruner
	logger   zerolog.Logger

	mu   sync.Mutex
	runs map[string]JobRun
}

// NewCronManager creates a new cron manager. pruner may be nil.
func NewCronManager(colleges *services.CollegeService, pruner TokenPruner) *CronManager {
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &CronManager{
		cron:     c,
		colleges: colleges,
		pruner:   pruner,
		logger:   log.With().Str("component", "cron").Logger(),
		runs:     map[string]JobRun{},
	}
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	m.logger.Info().Msg("starting cron jobs")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()

	m.logger.Info().Int("jobs", len(m.cron.Entries())).Msg("cron jobs started")
	return nil
}

// Stop stops all cron jobs and waits for running ones
func (m *CronManager) Stop() {
	m.logger.Info().Msg("stopping cron jobs")
	ctx := m.cron.Stop()
	<-ctx.Done()
	m.logger.Info().Msg("cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	// Every 10 minutes: precompute the first listing page of every sort
	_, err := m.cron.AddFunc("0 */10 * * * *", m.WarmCatalogCache)
	if err != nil {
		return err
	}

	// Every hour: drop expired token revocations
	if m.pruner != nil {
		_, err = m.cron.AddFunc("0 0 * * * *", m.PruneRevokedTokens)
		if err != nil {
			return err
		}
	}

	// Daily at 2 AM: log catalog counters
	_, err = m.cron.AddFunc("0 0 2 * * *", m.ReportCatalogStats)
	if err != nil {
		return err
	}

	m.logger.Debug().Msg("all cron jobs registered")
	return nil
}

// Runs returns the latest run of every job that has executed, by job name
func (m *CronManager) Runs() []JobRun {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]JobRun, 0, len(m.runs))
	for _, r := range m.runs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Job < out[j].Job })
	return out
}

// logJobStart logs the start of a cron job
func (m *CronManager) logJobStart(jobName string) {
	m.logger.Info().Str("job", jobName).Msg("job started")

	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[jobName] = JobRun{Job: jobName, Status: "running", StartedAt: time.Now()}
}

// logJobComplete logs successful completion of a cron job
func (m *CronManager) logJobComplete(jobName string, message string) {
	m.logger.Info().Str("job", jobName).Msg(message)

	m.mu.Lock()
	defer m.mu.Unlock()
	run := m.runs[jobName]
	run.Status = "completed"
	run.CompletedAt = time.Now()
	run.Message = message
	m.runs[jobName] = run
}

// logJobError logs a cron job error
func (m *CronManager) logJobError(jobName string, err error) {
	m.logger.Error().Err(err).Str("job", jobName).Msg("job failed")

	m.mu.Lock()
	defer m.mu.Unlock()
	run := m.runs[jobName]
	run.Status = "failed"
	run.CompletedAt = time.Now()
	run.Error = err.Error()
	m.runs[jobName] = run
}
