// Package livestate はリモートストアと同期するローカルの社員一覧を保持します。
package livestate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ogurasousui/headcount-dashboard/internal/core/employee"
	"go.uber.org/zap"
)

var (
	ErrAlreadyStarted = errors.New("livestate: already started")
	ErrTornDown       = errors.New("livestate: torn down")
)

// Snapshot はある時点の一覧と同期状態です。Employees は呼び出し側が自由に変更できるコピーです。
type Snapshot struct {
	Employees []*employee.Employee
	// Version は一覧が変わるたびに増えます。
	Version uint64
	// Sequence は最後に反映した全件取得の通番です。
	Sequence  uint64
	Loaded    bool
	Available bool
}

// Store は社員一覧の唯一の書き手です。
//
// 全件取得には発行順の通番を振り、反映済みより古い結果は捨てます。
// 楽観的変更は最後に取得した一覧の上に積まれ、次の全件取得で破棄されます。
type Store struct {
	gateway employee.Gateway
	logger  *zap.Logger

	issued atomic.Uint64

	mu          sync.RWMutex
	base        []*employee.Employee
	pending     []pendingMutation
	nextPending uint64
	employees   []*employee.Employee
	applied     uint64
	version     uint64
	loaded      bool
	available   bool
	started     bool
	closed      bool
	unsubscribe func()
	cancel      context.CancelFunc
	feedCtx     context.Context
	watchers    map[uint64]func(Snapshot)
	nextWatcher uint64
	refetching  bool
	dirty       bool
	lastChange  employee.ChangeEvent

	inflight sync.WaitGroup
}

type pendingMutation struct {
	token uint64
	m     Mutation
}

// New は Store を生成します。
func New(gateway employee.Gateway, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		gateway:   gateway,
		logger:    logger.Named("livestate"),
		base:      []*employee.Employee{},
		employees: []*employee.Employee{},
		available: true,
		watchers:  make(map[uint64]func(Snapshot)),
	}
}

// Start は変更通知を購読し、初回の全件取得を行います。
// ストアが未設定の場合は空の一覧のまま縮退して nil を返します。
func (s *Store) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrTornDown
	}
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.feedCtx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	unsubscribe, err := s.gateway.SubscribeToChanges(s.handleChange)
	switch {
	case errors.Is(err, employee.ErrStoreUnavailable):
		s.logger.Warn("change feed unavailable, running without live updates", zap.Error(err))
	case err != nil:
		return fmt.Errorf("livestate: subscribe: %w", err)
	default:
		s.mu.Lock()
		closed := s.closed
		if !closed {
			s.unsubscribe = unsubscribe
		}
		s.mu.Unlock()
		if closed {
			unsubscribe()
			return ErrTornDown
		}
	}

	if err := s.Load(ctx); err != nil {
		if errors.Is(err, employee.ErrStoreUnavailable) {
			s.logger.Warn("store unavailable, showing empty read-only view", zap.Error(err))
			return nil
		}
		return err
	}
	return nil
}

// Load は全件を取得して一覧を丸ごと置き換えます。
// 後から発行された取得が先に反映済みなら、この結果は捨てられます。
func (s *Store) Load(ctx context.Context) error {
	if s.isClosed() {
		return ErrTornDown
	}

	seq := s.issued.Add(1)
	list, err := s.gateway.FetchAll(ctx)
	if err != nil {
		if errors.Is(err, employee.ErrStoreUnavailable) {
			s.markUnavailable()
		}
		return fmt.Errorf("livestate: load #%d: %w", seq, err)
	}

	if !s.replace(seq, list) {
		s.logger.Debug("discarded stale fetch", zap.Uint64("sequence", seq))
	}
	return nil
}

// OnRemoteChange は変更通知を受けて Load と同じ全件置き換えを行います。
func (s *Store) OnRemoteChange(ctx context.Context, ev employee.ChangeEvent) error {
	s.logger.Debug("remote change", zap.String("kind", string(ev.Kind)), zap.String("table", ev.Table))
	if err := s.Load(ctx); err != nil {
		if !errors.Is(err, ErrTornDown) && !errors.Is(err, context.Canceled) {
			s.logger.Warn("refetch after remote change failed", zap.Error(err))
		}
		return err
	}
	return nil
}

// ApplyOptimistic は m をローカル一覧に即時反映し、取り消し用の関数を返します。
// 取り消しは m だけを外し、残りの未確定の変更を最後に取得した一覧へ積み直します。
// 取り消す前に全件取得が反映されていれば何もしません。
func (s *Store) ApplyOptimistic(m Mutation) (rollback func()) {
	s.mu.Lock()
	if s.closed || m == nil {
		s.mu.Unlock()
		return func() {}
	}
	s.nextPending++
	token := s.nextPending
	s.pending = append(s.pending, pendingMutation{token: token, m: m})
	s.employees = m.apply(employee.CloneAll(s.employees))
	s.version++
	snap, watchers := s.snapshotLocked(), s.watchersLocked()
	s.mu.Unlock()
	notify(watchers, snap)

	var once sync.Once
	return func() {
		once.Do(func() { s.rollback(token) })
	}
}

func (s *Store) rollback(token uint64) {
	s.mu.Lock()
	idx := -1
	for i, p := range s.pending {
		if p.token == token {
			idx = i
			break
		}
	}
	if s.closed || idx < 0 {
		s.mu.Unlock()
		return
	}
	s.pending = append(s.pending[:idx:idx], s.pending[idx+1:]...)
	list := employee.CloneAll(s.base)
	for _, p := range s.pending {
		list = p.m.apply(list)
	}
	s.employees = list
	s.version++
	snap, watchers := s.snapshotLocked(), s.watchersLocked()
	s.mu.Unlock()
	notify(watchers, snap)
}

// Employees は現在の一覧のコピーを返します。
func (s *Store) Employees() []*employee.Employee {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return employee.CloneAll(s.employees)
}

// Find は ID で社員を探します。
func (s *Store) Find(id string) (*employee.Employee, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.employees {
		if e.ID == id {
			return e.Clone(), true
		}
	}
	return nil, false
}

// Snapshot は現在の一覧と同期状態を返します。
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Watch は一覧や同期状態が変わるたびに fn を呼びます。
func (s *Store) Watch(fn func(Snapshot)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || fn == nil {
		return func() {}
	}
	s.nextWatcher++
	id := s.nextWatcher
	s.watchers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.watchers, id)
	}
}

// Teardown は購読を解除し、実行中の再取得を待ちます。以後の結果はすべて捨てられます。
func (s *Store) Teardown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	cancel := s.cancel
	s.watchers = make(map[uint64]func(Snapshot))
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if cancel != nil {
		cancel()
	}
	s.inflight.Wait()
}

// handleChange は通知ごとの再取得を 1 本にまとめます。
// 取得中に届いた通知は dirty に畳み込み、完了後にもう一度だけ取得します。
func (s *Store) handleChange(ev employee.ChangeEvent) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.refetching {
		s.dirty = true
		s.lastChange = ev
		s.mu.Unlock()
		return
	}
	s.refetching = true
	ctx := s.feedCtx
	s.inflight.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.inflight.Done()
		for {
			_ = s.OnRemoteChange(ctx, ev)

			s.mu.Lock()
			if s.closed || !s.dirty {
				s.refetching = false
				s.mu.Unlock()
				return
			}
			s.dirty = false
			ev = s.lastChange
			s.mu.Unlock()
		}
	}()
}

func (s *Store) replace(seq uint64, list []*employee.Employee) bool {
	s.mu.Lock()
	if s.closed || seq <= s.applied {
		s.mu.Unlock()
		return false
	}
	s.base = employee.CloneAll(list)
	s.employees = s.base
	s.pending = nil
	s.applied = seq
	s.version++
	s.loaded = true
	s.available = true
	snap, watchers := s.snapshotLocked(), s.watchersLocked()
	s.mu.Unlock()
	notify(watchers, snap)
	return true
}

func (s *Store) markUnavailable() {
	s.mu.Lock()
	if s.closed || !s.available {
		s.mu.Unlock()
		return
	}
	s.available = false
	snap, watchers := s.snapshotLocked(), s.watchersLocked()
	s.mu.Unlock()
	notify(watchers, snap)
}

func (s *Store) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Employees: employee.CloneAll(s.employees),
		Version:   s.version,
		Sequence:  s.applied,
		Loaded:    s.loaded,
		Available: s.available,
	}
}

func (s *Store) watchersLocked() []func(Snapshot) {
	out := make([]func(Snapshot), 0, len(s.watchers))
	for _, fn := range s.watchers {
		out = append(out, fn)
	}
	return out
}

func notify(watchers []func(Snapshot), snap Snapshot) {
	for _, fn := range watchers {
		fn(snap)
	}
}
