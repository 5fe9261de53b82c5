package repository

import (
	"context"
	"hash/fnv"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/halcyonlabs/carepulse/internal/domain/model"
	"github.com/halcyonlabs/carepulse/pkg/metrics"
)

// Default store configuration constants.
const (
	defaultShardCount           = 8
	defaultMaxReportsPerPatient = 500
	defaultMetricsInterval      = 10 * time.Second
)

// patientState bundles everything the store keeps for one patient.
type patientState struct {
	profile    model.Patient
	hasProfile bool
	// reports ordered by StartedAt ascending.
	reports []Record
	// alerts ordered by CreatedAt ascending.
	alerts []model.Alert
}

// shard holds a slice of the patient space under its own lock.
type shard struct {
	mu       sync.RWMutex
	patients map[string]*patientState
}

// MemStore implements Store with patient-hashed shards. Reports and
// alerts for one patient always live in the same shard, so every
// operation takes a single shard lock.
type MemStore struct {
	shards     []*shard
	shardCount int
	maxReports int

	// alertIndex maps alert id -> patient id so acknowledgements do not
	// scan shards.
	alertMu    sync.RWMutex
	alertIndex map[string]string

	metricsInterval time.Duration
}

// NewMemStore creates the sharded in-memory store and starts its
// background shard-metrics updater, which runs until ctx is cancelled.
func NewMemStore(ctx context.Context, opts ...Option) *MemStore {
	s := &MemStore{
		shardCount:      defaultShardCount,
		maxReports:      defaultMaxReportsPerPatient,
		alertIndex:      make(map[string]string),
		metricsInterval: defaultMetricsInterval,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{patients: make(map[string]*patientState)}
	}

	metrics.UpdateRepositoryShardCount(s.shardCount)
	go s.runMetricsUpdater(ctx)

	return s
}

func (s *MemStore) shardFor(patientID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(patientID))
	return s.shards[h.Sum32()%uint32(s.shardCount)]
}

// state returns the patient's state, creating it if needed.
// Caller holds the shard write lock.
func (sh *shard) state(patientID string) *patientState {
	st, ok := sh.patients[patientID]
	if !ok {
		st = &patientState{}
		sh.patients[patientID] = st
	}
	return st
}

// UpsertPatient creates or updates a patient profile.
func (s *MemStore) UpsertPatient(_ context.Context, p model.Patient) error {
	if p.PatientID == "" {
		return ErrMissingID
	}

	sh := s.shardFor(p.PatientID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	st := sh.state(p.PatientID)
	if st.hasProfile {
		p.CreatedAt = st.profile.CreatedAt
	}
	st.profile = p
	st.hasProfile = true
	return nil
}

// Patient returns a patient profile.
func (s *MemStore) Patient(_ context.Context, patientID string) (model.Patient, error) {
	sh := s.shardFor(patientID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	st, ok := sh.patients[patientID]
	if !ok || !st.hasProfile {
		return model.Patient{}, ErrNotFound
	}
	return st.profile, nil
}

// Patients returns all patient profiles, ordered by id.
func (s *MemStore) Patients(_ context.Context) ([]model.Patient, error) {
	var out []model.Patient
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, st := range sh.patients {
			if st.hasProfile {
				out = append(out, st.profile)
			}
		}
		sh.mu.RUnlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PatientID < out[j].PatientID })
	return out, nil
}

// PutReport stores an evaluated conversation.
func (s *MemStore) PutReport(_ context.Context, r Record) error {
	if r.PatientID == "" || r.ConversationID == "" {
		return ErrMissingID
	}

	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	sh := s.shardFor(r.PatientID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	st := sh.state(r.PatientID)
	st.reports = append(st.reports, r)

	// Conversations normally arrive in order; sort only when the new
	// report landed out of sequence.
	n := len(st.reports)
	if n > 1 && st.reports[n-1].StartedAt.Before(st.reports[n-2].StartedAt) {
		sort.SliceStable(st.reports, func(i, j int) bool {
			return st.reports[i].StartedAt.Before(st.reports[j].StartedAt)
		})
	}

	if s.maxReports > 0 && len(st.reports) > s.maxReports {
		st.reports = st.reports[len(st.reports)-s.maxReports:]
	}

	metrics.RecordReportStored()
	return nil
}

// Reports returns a patient's reports with StartedAt >= since, newest first.
func (s *MemStore) Reports(_ context.Context, patientID string, since time.Time, limit int) ([]Record, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	sh := s.shardFor(patientID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	st, ok := sh.patients[patientID]
	if !ok {
		return nil, nil
	}

	var out []Record
	for i := len(st.reports) - 1; i >= 0; i-- {
		r := st.reports[i]
		if r.StartedAt.Before(since) {
			break
		}
		out = append(out, r)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Scores returns a patient's composite scores with StartedAt >= since, oldest first.
func (s *MemStore) Scores(_ context.Context, patientID string, since time.Time) ([]ScorePoint, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	sh := s.shardFor(patientID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	st, ok := sh.patients[patientID]
	if !ok {
		return nil, nil
	}

	var out []ScorePoint
	for _, r := range st.reports {
		if r.StartedAt.Before(since) {
			continue
		}
		out = append(out, ScorePoint{
			ConversationID: r.ConversationID,
			Score:          r.Score,
			StartedAt:      r.StartedAt,
		})
	}
	return out, nil
}

// LatestReport returns a patient's most recent report.
func (s *MemStore) LatestReport(_ context.Context, patientID string) (Record, error) {
	sh := s.shardFor(patientID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	st, ok := sh.patients[patientID]
	if !ok || len(st.reports) == 0 {
		return Record{}, ErrNotFound
	}
	return st.reports[len(st.reports)-1], nil
}

// AddAlert appends an alert for a patient.
func (s *MemStore) AddAlert(_ context.Context, a model.Alert) error {
	if a.AlertID == "" || a.PatientID == "" {
		return ErrMissingID
	}

	sh := s.shardFor(a.PatientID)
	sh.mu.Lock()
	st := sh.state(a.PatientID)
	st.alerts = append(st.alerts, a)
	sh.mu.Unlock()

	s.alertMu.Lock()
	s.alertIndex[a.AlertID] = a.PatientID
	s.alertMu.Unlock()

	return nil
}

// Alerts returns a patient's alerts, newest first.
func (s *MemStore) Alerts(_ context.Context, patientID string, includeAcked bool) ([]model.Alert, error) {
	sh := s.shardFor(patientID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	st, ok := sh.patients[patientID]
	if !ok {
		return nil, nil
	}

	var out []model.Alert
	for i := len(st.alerts) - 1; i >= 0; i-- {
		a := st.alerts[i]
		if a.Acknowledged && !includeAcked {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// AckAlert marks an alert acknowledged and returns it.
func (s *MemStore) AckAlert(_ context.Context, alertID string) (model.Alert, error) {
	s.alertMu.RLock()
	patientID, ok := s.alertIndex[alertID]
	s.alertMu.RUnlock()
	if !ok {
		return model.Alert{}, ErrNotFound
	}

	sh := s.shardFor(patientID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	st, ok := sh.patients[patientID]
	if !ok {
		return model.Alert{}, ErrNotFound
	}
	for i := range st.alerts {
		if st.alerts[i].AlertID != alertID {
			continue
		}
		if !st.alerts[i].Acknowledged {
			now := time.Now().UTC()
			st.alerts[i].Acknowledged = true
			st.alerts[i].AcknowledgedAt = &now
			metrics.RecordAlertAcked()
		}
		return st.alerts[i], nil
	}
	return model.Alert{}, ErrNotFound
}

// CountPatients returns the number of patients with history or profile.
func (s *MemStore) CountPatients(_ context.Context) int {
	count := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		count += len(sh.patients)
		sh.mu.RUnlock()
	}
	return count
}

// runMetricsUpdater publishes shard gauges until ctx is cancelled.
func (s *MemStore) runMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(s.metricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.publishShardMetrics()
		}
	}
}

func (s *MemStore) publishShardMetrics() {
	total := 0
	for i, sh := range s.shards {
		sh.mu.RLock()
		records := 0
		for _, st := range sh.patients {
			records += len(st.reports)
		}
		sh.mu.RUnlock()

		total += records
		metrics.UpdateRepositoryRecordsPerShard(strconv.Itoa(i), records)
	}
	metrics.UpdateRepositoryRecordsTotal(total)
}
