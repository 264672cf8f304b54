// Package follower drives the periodic glucose refresh cycle and owns all
// session-mutating state. A single goroutine executes every mutation;
// foreground calls are marshalled onto it, so refresh ticks and user actions
// never interleave over shared state.
package follower

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mrcode/librelink-follower/internal/credentials"
	"github.com/mrcode/librelink-follower/internal/glucose"
	"github.com/mrcode/librelink-follower/internal/librelink"
	"github.com/mrcode/librelink-follower/internal/models"
	"github.com/mrcode/librelink-follower/internal/notifications"
)

// ErrNoConnections is returned when a login succeeds but the account has no
// patient connections to follow.
var ErrNoConnections = errors.New("no patient connections found")

// ErrClosed is returned for calls made after Close.
var ErrClosed = errors.New("follower service is closed")

// State is the scheduler lifecycle state.
type State int

const (
	// Idle: no patient, timer never armed.
	Idle State = iota
	// Running: timer armed, refresh cycles ticking.
	Running
	// Stopped: timer disarmed, session and data retained.
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return "idle"
	}
}

// Snapshot is the display projection of the current state, safe to use off
// the owner goroutine.
type Snapshot struct {
	State         State
	Authenticated bool

	PatientName    string
	CurrentValue   string
	TrendSymbol    string
	Unit           string
	Status         glucose.Status
	StatusText     string
	TargetHighText string
	TargetLowText  string
	LastUpdateText string
	StatusLine     string
	History        []models.GlucoseMeasurement
}

// fetchResult is posted back to the owner goroutine by the fetch helper.
type fetchResult struct {
	generation uint64
	data       *librelink.GraphData
	err        error
}

// Service is the refresh scheduler.
type Service struct {
	client *librelink.Client
	store  credentials.Store
	notify *notifications.Manager
	logger *zap.Logger

	// Owner-goroutine state. Touched only from run().
	settings   *models.Settings
	session    *models.Session
	data       *models.GlucoseData
	state      State
	statusLine string
	generation uint64
	fetching   bool
	ticker     *time.Ticker

	// Test hook: overrides the settings-derived tick interval when non-zero.
	intervalOverride time.Duration

	commands chan func()
	done     chan struct{}
}

// New creates a service. store may be nil when credential persistence is not
// wanted.
func New(client *librelink.Client, store credentials.Store, settings *models.Settings, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:   client,
		store:    store,
		notify:   notifications.NewManager(settings.ShowNotifications, settings.RepeatAlertMinutes),
		logger:   logger,
		settings: settings.Clone(),
		session:  models.NewSession(),
		data:     &models.GlucoseData{TrendArrow: 3},
		state:    Idle,
		commands: make(chan func(), 16),
		done:     make(chan struct{}),
	}
}

// Start launches the owner goroutine.
func (s *Service) Start() {
	go s.run()
}

// Close stops the owner goroutine. In-flight network calls are not aborted;
// their results are discarded.
func (s *Service) Close() {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}

func (s *Service) run() {
	defer s.disarm()
	for {
		select {
		case fn := <-s.commands:
			fn()
		case <-s.tick():
			s.startRefresh()
		case <-s.done:
			return
		}
	}
}

// tick returns the armed ticker channel, or a forever-blocking nil channel.
func (s *Service) tick() <-chan time.Time {
	if s.ticker == nil {
		return nil
	}
	return s.ticker.C
}

func (s *Service) interval() time.Duration {
	if s.intervalOverride > 0 {
		return s.intervalOverride
	}
	return time.Duration(s.settings.UpdateIntervalMinutes) * time.Minute
}

func (s *Service) arm() {
	s.disarm()
	s.ticker = time.NewTicker(s.interval())
}

func (s *Service) disarm() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
}

// exec runs fn on the owner goroutine and waits for it to finish.
func (s *Service) exec(fn func()) error {
	finished := make(chan struct{})
	select {
	case s.commands <- func() {
		fn()
		close(finished)
	}:
	case <-s.done:
		return ErrClosed
	}

	select {
	case <-finished:
		return nil
	case <-s.done:
		return ErrClosed
	}
}

// Login authenticates, resolves the patient connection list and, on success,
// commits the session and starts the refresh cycle. The network calls run on
// the caller's flow; only the state commit happens on the owner goroutine.
func (s *Service) Login(ctx context.Context, email, password string, rememberMe bool) error {
	result, err := s.client.Login(ctx, email, password)
	if err != nil {
		return err
	}

	conns, err := s.client.GetConnections(ctx)
	if err != nil {
		return err
	}
	if len(conns) == 0 {
		return ErrNoConnections
	}
	patient := conns[0]

	if rememberMe && s.store != nil {
		err := s.store.Save(credentials.Stored{
			Email:      email,
			Password:   password,
			RememberMe: true,
		})
		if err != nil {
			s.logger.Warn("saving credentials failed", zap.Error(err))
		}
	}

	return s.exec(func() {
		s.session.Commit(email, result.Token, result.UserID, result.Expiry, patient)
		s.data.Clear()
		s.statusLine = ""
		s.generation++

		s.logger.Info("session established",
			zap.String("patient", s.session.PatientName()),
			zap.Int("target_high", s.session.TargetHigh),
			zap.Int("target_low", s.session.TargetLow))

		s.state = Running
		s.arm()
		s.startRefresh()
	})
}

// Logout clears the session and all display state, disarms the timer and
// deletes stored credentials. A refresh already in flight is discarded when
// it completes.
func (s *Service) Logout() error {
	return s.exec(func() {
		s.generation++
		s.disarm()
		s.state = Idle
		s.session.Clear()
		s.data.Clear()
		s.statusLine = ""
		s.client.SetAuthToken("")

		if s.store != nil {
			if err := s.store.Delete(); err != nil {
				s.logger.Warn("deleting credentials failed", zap.Error(err))
			}
		}
		s.logger.Info("logged out")
	})
}

// StopUpdates disarms the timer but keeps session and data, so updates can
// be resumed without logging in again.
func (s *Service) StopUpdates() error {
	return s.exec(func() {
		if s.state != Running {
			return
		}
		s.disarm()
		s.state = Stopped
	})
}

// ResumeUpdates re-arms the timer after StopUpdates.
func (s *Service) ResumeUpdates() error {
	return s.exec(func() {
		if s.state != Stopped {
			return
		}
		s.state = Running
		s.arm()
		s.startRefresh()
	})
}

// RefreshNow requests one refresh cycle outside the timer cadence. It is a
// no-op when no patient is set or a refresh is already in flight.
func (s *Service) RefreshNow() error {
	return s.exec(s.startRefresh)
}

// ApplySettings validates and installs changed settings. When running, the
// timer is re-armed with the new interval; accumulated session state is
// never dropped.
func (s *Service) ApplySettings(settings *models.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	return s.exec(func() {
		s.settings = settings.Clone()
		s.notify.UpdateSettings(settings.ShowNotifications, settings.RepeatAlertMinutes)

		if s.state == Running {
			// Stop, update interval, re-arm.
			s.disarm()
			s.arm()
		}
		s.logger.Info("settings applied",
			zap.Int("interval_minutes", settings.UpdateIntervalMinutes),
			zap.String("unit", settings.PreferredUnit.String()))
	})
}

// Snapshot returns the current display state.
func (s *Service) Snapshot() (Snapshot, error) {
	var snap Snapshot
	err := s.exec(func() {
		snap = s.buildSnapshot()
	})
	return snap, err
}

// startRefresh launches one refresh cycle. Runs on the owner goroutine.
// Cycles are serialized: a tick landing while one is outstanding is skipped.
func (s *Service) startRefresh() {
	if s.session.PatientID == "" {
		return
	}
	if s.fetching {
		s.logger.Debug("refresh still in flight, skipping tick")
		return
	}

	s.fetching = true
	generation := s.generation
	patientID := s.session.PatientID

	go func() {
		data, err := s.client.GetGraphData(context.Background(), patientID)
		result := fetchResult{generation: generation, data: data, err: err}
		select {
		case s.commands <- func() { s.finishRefresh(result) }:
		case <-s.done:
		}
	}()
}

// finishRefresh applies one cycle's outcome. Runs on the owner goroutine.
func (s *Service) finishRefresh(result fetchResult) {
	s.fetching = false

	if result.generation != s.generation || s.state != Running {
		// The session this fetch belongs to is gone or the scheduler was
		// stopped; a late result must not resurrect cleared state.
		s.logger.Debug("discarding stale refresh result")
		return
	}

	minutes := s.settings.UpdateIntervalMinutes

	if result.err != nil {
		s.statusLine = fmt.Sprintf("Update failed: %v. Will retry in %d minute(s).", result.err, minutes)
		s.logger.Warn("refresh failed", zap.Error(result.err))
		return
	}

	if conn := result.data.Connection; conn != nil && conn.GlucoseMeasurement != nil {
		m := conn.GlucoseMeasurement
		s.data.CurrentValueMgPerDl = float64(m.ValueInMgPerDl)
		if m.TrendArrow != nil {
			s.data.TrendArrow = *m.TrendArrow
		} else {
			s.data.TrendArrow = 0
		}
		s.data.LastUpdateTime = time.Now()

		high, low := s.settings.Thresholds()
		reading := glucose.Classify(s.data.CurrentValueMgPerDl, s.settings.PreferredUnit, high, low)
		if err := s.notify.CheckAndNotify(reading, s.data.TrendSymbol()); err != nil {
			s.logger.Warn("notification failed", zap.Error(err))
		}
	}

	if result.data.GraphData != nil {
		s.data.History = models.TrimHistory(result.data.GraphData, models.HistoryLimit)
	}

	plural := ""
	if minutes > 1 {
		plural = "s"
	}
	s.statusLine = fmt.Sprintf("Last updated: %s. Next update in %d minute%s.",
		time.Now().Format("15:04:05"), minutes, plural)
	s.logger.Debug("refresh succeeded",
		zap.Float64("value_mg_dl", s.data.CurrentValueMgPerDl),
		zap.Int("history_points", len(s.data.History)))
}

// buildSnapshot projects the owner state for observers. Runs on the owner
// goroutine.
func (s *Service) buildSnapshot() Snapshot {
	snap := Snapshot{
		State:          s.state,
		Authenticated:  s.session.Authenticated(),
		PatientName:    s.session.PatientName(),
		Unit:           s.settings.PreferredUnit.String(),
		StatusLine:     s.statusLine,
		CurrentValue:   "--",
		TrendSymbol:    s.data.TrendSymbol(),
		LastUpdateText: "--",
	}

	if s.settings.PreferredUnit == glucose.MmolPerL {
		snap.TargetHighText = fmt.Sprintf("%.1f mmol/L", float64(s.session.TargetHigh)/glucose.MgPerDlPerMmol)
		snap.TargetLowText = fmt.Sprintf("%.1f mmol/L", float64(s.session.TargetLow)/glucose.MgPerDlPerMmol)
	} else {
		snap.TargetHighText = fmt.Sprintf("%d mg/dL", s.session.TargetHigh)
		snap.TargetLowText = fmt.Sprintf("%d mg/dL", s.session.TargetLow)
	}

	if !s.data.LastUpdateTime.IsZero() {
		high, low := s.settings.Thresholds()
		reading := glucose.Classify(s.data.CurrentValueMgPerDl, s.settings.PreferredUnit, high, low)
		snap.CurrentValue = fmt.Sprintf("%.1f", reading.DisplayValue)
		snap.Status = reading.Status
		snap.StatusText = reading.Status.String()
		snap.LastUpdateText = s.data.LastUpdateTime.Format("15:04:05")
	}

	if len(s.data.History) > 0 {
		snap.History = make([]models.GlucoseMeasurement, len(s.data.History))
		copy(snap.History, s.data.History)
	}

	return snap
}
