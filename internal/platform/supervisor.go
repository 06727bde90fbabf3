package platform

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Policy controls restart behavior for supervised units.
type Policy struct {
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64

	// MaxRestarts bounds restarts per unit; zero means unlimited.
	MaxRestarts int
}

type RestartPolicy string

const (
	// RestartPermanent restarts the unit whenever it returns.
	RestartPermanent RestartPolicy = "permanent"
	// RestartTransient restarts the unit only when it returns an error.
	RestartTransient RestartPolicy = "transient"
	// RestartTemporary never restarts the unit.
	RestartTemporary RestartPolicy = "temporary"
)

// UnitSpec names a supervised unit and its restart policy.
type UnitSpec struct {
	Name    string
	Restart RestartPolicy
}

// UnitStatus is a point-in-time view of one supervised unit.
type UnitStatus struct {
	Name            string        `json:"name"`
	RestartPolicy   RestartPolicy `json:"restart_policy"`
	RestartCount    int           `json:"restart_count"`
	LastError       string        `json:"last_error,omitempty"`
	PermanentFailed bool          `json:"permanent_failed"`
}

// Hooks observe unit restarts and permanent failures.
type Hooks struct {
	OnUnitRestart          func(name string, err error, restarts int)
	OnUnitPermanentFailure func(name string, err error, restarts int)
}

func defaultPolicy() Policy {
	return Policy{
		InitialBackoff: 10 * time.Millisecond,
		MaxBackoff:     200 * time.Millisecond,
		BackoffFactor:  2.0,
	}
}

func normalizePolicy(policy Policy) Policy {
	def := defaultPolicy()
	if policy.InitialBackoff <= 0 {
		policy.InitialBackoff = def.InitialBackoff
	}
	if policy.MaxBackoff <= 0 {
		policy.MaxBackoff = def.MaxBackoff
	}
	if policy.MaxBackoff < policy.InitialBackoff {
		policy.MaxBackoff = policy.InitialBackoff
	}
	if policy.BackoffFactor < 1 {
		policy.BackoffFactor = def.BackoffFactor
	}
	return policy
}

// Supervisor runs units as goroutines and restarts them per policy with
// bounded exponential backoff. Each unit is independent: one unit failing
// never disturbs its siblings.
type Supervisor struct {
	policy Policy
	hooks  Hooks

	mu    sync.Mutex
	units map[string]*unit
}

type unit struct {
	cancel context.CancelFunc
	done   chan struct{}
	spec   UnitSpec
	run    func(ctx context.Context) error

	restartCount    int
	lastErr         error
	permanentFailed bool
}

func NewSupervisor(policy Policy) *Supervisor {
	return NewSupervisorWithHooks(policy, Hooks{})
}

func NewSupervisorWithHooks(policy Policy, hooks Hooks) *Supervisor {
	return &Supervisor{
		policy: normalizePolicy(policy),
		hooks:  hooks,
		units:  make(map[string]*unit),
	}
}

// Start runs the function as a transient unit under the given name.
func (s *Supervisor) Start(name string, run func(ctx context.Context) error) error {
	return s.StartSpec(UnitSpec{Name: name, Restart: RestartTransient}, run)
}

func (s *Supervisor) StartSpec(spec UnitSpec, run func(ctx context.Context) error) error {
	if spec.Name == "" {
		return errors.New("unit name is required")
	}
	if run == nil {
		return errors.New("unit runner is required")
	}
	switch spec.Restart {
	case RestartPermanent, RestartTransient, RestartTemporary:
	default:
		spec.Restart = RestartTransient
	}

	s.mu.Lock()
	if _, exists := s.units[spec.Name]; exists {
		s.mu.Unlock()
		return fmt.Errorf("unit already running: %s", spec.Name)
	}
	ctx, cancel := context.WithCancel(context.Background())
	u := &unit{
		cancel: cancel,
		done:   make(chan struct{}),
		spec:   spec,
		run:    run,
	}
	s.units[spec.Name] = u
	s.mu.Unlock()

	go s.runUnit(ctx, u)
	return nil
}

func (s *Supervisor) runUnit(ctx context.Context, u *unit) {
	defer func() {
		s.mu.Lock()
		if current, ok := s.units[u.spec.Name]; ok && current == u {
			delete(s.units, u.spec.Name)
		}
		s.mu.Unlock()
		close(u.done)
	}()

	backoff := s.policy.InitialBackoff

	for {
		err := u.run(ctx)
		if ctx.Err() != nil {
			return
		}
		if !shouldRestart(u.spec.Restart, err) {
			return
		}

		s.mu.Lock()
		u.lastErr = err
		restarts := u.restartCount
		s.mu.Unlock()

		if s.policy.MaxRestarts > 0 && restarts >= s.policy.MaxRestarts {
			s.mu.Lock()
			u.permanentFailed = true
			s.mu.Unlock()
			if s.hooks.OnUnitPermanentFailure != nil {
				s.hooks.OnUnitPermanentFailure(u.spec.Name, err, restarts)
			}
			return
		}

		restarts++
		s.mu.Lock()
		u.restartCount = restarts
		s.mu.Unlock()
		if s.hooks.OnUnitRestart != nil {
			s.hooks.OnUnitRestart(u.spec.Name, err, restarts)
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		next := time.Duration(float64(backoff) * s.policy.BackoffFactor)
		if next > s.policy.MaxBackoff {
			next = s.policy.MaxBackoff
		}
		backoff = next
	}
}

func shouldRestart(policy RestartPolicy, err error) bool {
	switch policy {
	case RestartPermanent:
		return true
	case RestartTransient:
		return err != nil
	default:
		return false
	}
}

// Stop cancels the named unit and waits for it to finish. Stopping an
// unknown unit is a no-op.
func (s *Supervisor) Stop(name string) {
	s.mu.Lock()
	u, ok := s.units[name]
	s.mu.Unlock()
	if !ok {
		return
	}
	u.cancel()
	<-u.done
}

// StopAll cancels every unit and waits for all of them to finish.
func (s *Supervisor) StopAll() {
	s.mu.Lock()
	units := make([]*unit, 0, len(s.units))
	for _, u := range s.units {
		units = append(units, u)
	}
	s.mu.Unlock()

	for _, u := range units {
		u.cancel()
	}
	for _, u := range units {
		<-u.done
	}
}

// Units lists the names of the currently running units, sorted.
func (s *Supervisor) Units() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.units))
	for name := range s.units {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Status lists the current units with restart diagnostics, sorted by name.
func (s *Supervisor) Status() []UnitStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.units))
	for name := range s.units {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]UnitStatus, 0, len(names))
	for _, name := range names {
		u := s.units[name]
		out = append(out, UnitStatus{
			Name:            u.spec.Name,
			RestartPolicy:   u.spec.Restart,
			RestartCount:    u.restartCount,
			LastError:       errString(u.lastErr),
			PermanentFailed: u.permanentFailed,
		})
	}
	return out
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
