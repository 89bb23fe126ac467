package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// RegistryConfig configures a health check registry.
type RegistryConfig struct {
	// Timeout bounds a full CheckAll sweep.
	// Default: 10 seconds
	Timeout time.Duration

	// MaxConcurrent caps how many checks run at once during CheckAll.
	// Zero means unbounded.
	MaxConcurrent int
}

// Registry holds named health checkers and runs them as a group.
type Registry struct {
	config RegistryConfig

	mu       sync.RWMutex
	checkers map[string]Checker
	order    []string
}

// NewRegistry creates a registry. A zero config gets defaults.
func NewRegistry(config ...RegistryConfig) *Registry {
	cfg := RegistryConfig{Timeout: 10 * time.Second}
	if len(config) > 0 {
		cfg = config[0]
		if cfg.Timeout <= 0 {
			cfg.Timeout = 10 * time.Second
		}
	}

	return &Registry{
		config:   cfg,
		checkers: make(map[string]Checker),
	}
}

// Register adds a checker under its own name. Registering a name twice
// returns ErrDuplicateChecker.
func (r *Registry) Register(c Checker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, exists := r.checkers[name]; exists {
		return ErrDuplicateChecker
	}
	r.checkers[name] = c
	r.order = append(r.order, name)
	return nil
}

// Unregister removes the named checker. Unknown names are ignored.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.checkers[name]; !exists {
		return
	}
	delete(r.checkers, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Names returns registered checker names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Check runs the single named checker.
func (r *Registry) Check(ctx context.Context, name string) (Result, error) {
	r.mu.RLock()
	c, ok := r.checkers[name]
	r.mu.RUnlock()

	if !ok {
		return Result{}, ErrCheckerNotFound
	}
	return r.run(ctx, c), nil
}

// CheckAll runs every registered checker concurrently and returns the
// results keyed by checker name.
func (r *Registry) CheckAll(ctx context.Context) map[string]Result {
	r.mu.RLock()
	checkers := make([]Checker, 0, len(r.order))
	for _, name := range r.order {
		checkers = append(checkers, r.checkers[name])
	}
	r.mu.RUnlock()

	results := make(map[string]Result, len(checkers))
	if len(checkers) == 0 {
		return results
	}

	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	var resMu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	if r.config.MaxConcurrent > 0 {
		g.SetLimit(r.config.MaxConcurrent)
	}

	for _, c := range checkers {
		g.Go(func() error {
			res := r.run(ctx, c)
			resMu.Lock()
			results[c.Name()] = res
			resMu.Unlock()
			return nil
		})
	}

	// Checkers never return errors through the group; failures are
	// carried in their Result.
	_ = g.Wait()
	return results
}

// Overall folds a result set into one status. Any unhealthy check makes
// the whole set unhealthy; otherwise any degraded check makes it
// degraded.
func Overall(results map[string]Result) Status {
	overall := StatusHealthy
	for _, res := range results {
		if res.Status > overall {
			overall = res.Status
		}
	}
	return overall
}

// run executes one checker under the registry deadline, converting an
// expired context into an unhealthy result.
func (r *Registry) run(ctx context.Context, c Checker) Result {
	start := time.Now()
	done := make(chan Result, 1)

	go func() {
		done <- c.Check(ctx)
	}()

	select {
	case res := <-done:
		res.Duration = time.Since(start)
		if res.Checked.IsZero() {
			res.Checked = start
		}
		return res
	case <-ctx.Done():
		return Result{
			Status:   StatusUnhealthy,
			Message:  "check timed out",
			Err:      ErrCheckTimeout,
			Duration: time.Since(start),
			Checked:  start,
		}
	}
}

// Checker adapts the whole registry into a single Checker, so one
// registry can nest inside another.
func (r *Registry) Checker(name string) Checker {
	return NewCheckerFunc(name, func(ctx context.Context) Result {
		results := r.CheckAll(ctx)
		status := Overall(results)

		details := make(map[string]any, len(results))
		for n, res := range results {
			details[n] = map[string]any{
				"status":  res.Status.String(),
				"message": res.Message,
			}
		}

		var message string
		switch status {
		case StatusUnhealthy:
			message = "one or more checks failed"
		case StatusDegraded:
			message = "one or more checks degraded"
		default:
			message = "all checks passed"
		}

		return Result{
			Status:  status,
			Message: message,
			Details: details,
			Checked: time.Now(),
		}
	})
}
