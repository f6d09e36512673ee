package services

import (
	"context"
	"sync"
	"time"

	"grocery-analytics/internal/apperror"
	"grocery-analytics/internal/models"
)

// ErrSuperseded возвращается, если пока шел пересчет, клиент запустил более новый.
var ErrSuperseded = apperror.Conflict("dashboard recompute superseded by a newer request", nil)

// SnapshotComputer считает снимок дашборда.
type SnapshotComputer interface {
	Compute(ctx context.Context, now time.Time, rng models.ReportRange) (*models.Snapshot, error)
}

// Session сериализует пересчеты одного клиента: каждый новый вызов получает
// следующий номер поколения и отменяет предыдущий. Результат устаревшего
// поколения отбрасывается.
type Session struct {
	computer SnapshotComputer

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	lastUsed   time.Time
	last       map[models.ReportRange]*models.Snapshot
}

// NewSession создает сессию поверх вычислителя.
func NewSession(computer SnapshotComputer) *Session {
	return &Session{
		computer: computer,
		lastUsed: time.Now(),
		last:     make(map[models.ReportRange]*models.Snapshot),
	}
}

// Recompute запускает новый пересчет и отменяет выполняющийся.
func (s *Session) Recompute(ctx context.Context, now time.Time, rng models.ReportRange) (*models.Snapshot, error) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	token := s.generation
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.lastUsed = time.Now()
	s.mu.Unlock()

	snapshot, err := s.computer.Compute(runCtx, now, rng)

	s.mu.Lock()
	defer s.mu.Unlock()
	cancel()

	if token != s.generation {
		return nil, ErrSuperseded
	}
	s.cancel = nil
	if err != nil {
		return nil, err
	}

	s.last[snapshot.Range] = snapshot
	return snapshot, nil
}

// Last возвращает последний успешный снимок периода, сохраненный сессией.
func (s *Session) Last(rng models.ReportRange) (*models.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot, ok := s.last[rng]
	return snapshot, ok
}

// Generation возвращает номер последнего запущенного пересчета.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Cancel отменяет выполняющийся пересчет, если он есть.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
		s.generation++
	}
}

func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel == nil && s.lastUsed.Before(cutoff)
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastUsed = time.Now()
	s.mu.Unlock()
}

// SessionRegistry хранит сессии по ключу клиента и удаляет простаивающие.
type SessionRegistry struct {
	computer SnapshotComputer
	idle     time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionRegistry создает реестр; idle <= 0 отключает очистку.
func NewSessionRegistry(computer SnapshotComputer, idle time.Duration) *SessionRegistry {
	return &SessionRegistry{
		computer: computer,
		idle:     idle,
		sessions: make(map[string]*Session),
	}
}

// Get возвращает сессию клиента, создавая ее при первом обращении.
func (r *SessionRegistry) Get(key string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pruneLocked(time.Now())

	session, ok := r.sessions[key]
	if !ok {
		session = NewSession(r.computer)
		r.sessions[key] = session
	} else {
		session.touch()
	}
	return session
}

// Prune удаляет сессии без активности дольше idle и возвращает их число.
func (r *SessionRegistry) Prune(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pruneLocked(now)
}

// Len возвращает число живых сессий.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *SessionRegistry) pruneLocked(now time.Time) int {
	if r.idle <= 0 {
		return 0
	}
	cutoff := now.Add(-r.idle)
	removed := 0
	for key, session := range r.sessions {
		if session.idleSince(cutoff) {
			delete(r.sessions, key)
			removed++
		}
	}
	return removed
}
