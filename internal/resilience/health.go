package resilience

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"sort"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"crypto-advisor/internal/logging"
)

// HealthStatus represents the health status of a component.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "HEALTHY"
	HealthStatusDegraded  HealthStatus = "DEGRADED"
	HealthStatusUnhealthy HealthStatus = "UNHEALTHY"
	HealthStatusUnknown   HealthStatus = "UNKNOWN"
)

// ComponentHealth represents the health of a single component.
type ComponentHealth struct {
	Name      string         `json:"name"`
	Status    HealthStatus   `json:"status"`
	Message   string         `json:"message,omitempty"`
	LastCheck time.Time      `json:"lastCheck"`
	Latency   time.Duration  `json:"latency"`
	Details   map[string]any `json:"details,omitempty"`
}

// HealthCheck reports the health of one component.
type HealthCheck func(ctx context.Context) ComponentHealth

// HealthMonitor runs registered component checks on demand.
type HealthMonitor struct {
	mu sync.RWMutex

	startTime       time.Time
	components      map[string]HealthCheck
	componentHealth map[string]ComponentHealth
	overallStatus   HealthStatus
	timeout         time.Duration
	logger          zerolog.Logger

	// Metrics
	totalChecks     int64
	failedChecks    int64
	panicRecoveries int64
}

// NewHealthMonitor creates a health monitor. Each check run is bounded by
// timeout.
func NewHealthMonitor(timeout time.Duration, logger zerolog.Logger) *HealthMonitor {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HealthMonitor{
		startTime:       time.Now(),
		components:      make(map[string]HealthCheck),
		componentHealth: make(map[string]ComponentHealth),
		overallStatus:   HealthStatusUnknown,
		timeout:         timeout,
		logger:          logging.WithComponent(logger, "health"),
	}
}

// RegisterComponent registers a health check for a component.
func (m *HealthMonitor) RegisterComponent(name string, check HealthCheck) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components[name] = check
}

// Check runs every registered check concurrently and returns the result.
func (m *HealthMonitor) Check(ctx context.Context) SystemHealth {
	m.mu.RLock()
	components := make(map[string]HealthCheck, len(m.components))
	for k, v := range m.components {
		components[k] = v
	}
	m.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var wg sync.WaitGroup
	results := make(chan ComponentHealth, len(components)+1)

	for name, check := range components {
		wg.Add(1)
		go func(n string, c HealthCheck) {
			defer wg.Done()
			defer m.recoverPanic(n, results)

			start := time.Now()
			health := c(ctx)
			health.Name = n
			health.LastCheck = time.Now()
			health.Latency = time.Since(start)
			results <- health
		}(name, check)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		results <- checkGoroutines()
	}()

	wg.Wait()
	close(results)

	m.mu.Lock()
	m.totalChecks++
	hasUnhealthy := false
	hasDegraded := false

	for health := range results {
		m.componentHealth[health.Name] = health

		switch health.Status {
		case HealthStatusUnhealthy:
			hasUnhealthy = true
			m.failedChecks++
			m.logger.Warn().Str("check", health.Name).Str("message", health.Message).Msg("Component unhealthy")
		case HealthStatusDegraded:
			hasDegraded = true
		}
	}

	switch {
	case hasUnhealthy:
		m.overallStatus = HealthStatusUnhealthy
	case hasDegraded:
		m.overallStatus = HealthStatusDegraded
	default:
		m.overallStatus = HealthStatusHealthy
	}
	m.mu.Unlock()

	return m.GetHealth()
}

func checkGoroutines() ComponentHealth {
	n := runtime.NumGoroutine()
	return ComponentHealth{
		Name:      "goroutines",
		Status:    HealthStatusHealthy,
		Message:   fmt.Sprintf("Goroutine count: %d", n),
		LastCheck: time.Now(),
		Details:   map[string]any{"count": n},
	}
}

func (m *HealthMonitor) recoverPanic(component string, results chan<- ComponentHealth) {
	if r := recover(); r != nil {
		m.mu.Lock()
		m.panicRecoveries++
		m.mu.Unlock()

		results <- ComponentHealth{
			Name:      component,
			Status:    HealthStatusUnhealthy,
			Message:   fmt.Sprintf("Panic recovered: %v", r),
			LastCheck: time.Now(),
		}
	}
}

// GetHealth returns the result of the last check run.
func (m *HealthMonitor) GetHealth() SystemHealth {
	m.mu.RLock()
	defer m.mu.RUnlock()

	components := make([]ComponentHealth, 0, len(m.componentHealth))
	for _, h := range m.componentHealth {
		components = append(components, h)
	}
	sort.Slice(components, func(i, j int) bool { return components[i].Name < components[j].Name })

	return SystemHealth{
		Status:          m.overallStatus,
		Uptime:          time.Since(m.startTime).Round(time.Second).String(),
		StartTime:       m.startTime,
		Components:      components,
		TotalChecks:     m.totalChecks,
		FailedChecks:    m.failedChecks,
		PanicRecoveries: m.panicRecoveries,
	}
}

// SystemHealth represents overall system health.
type SystemHealth struct {
	Status          HealthStatus      `json:"status"`
	Uptime          string            `json:"uptime"`
	StartTime       time.Time         `json:"startTime"`
	Components      []ComponentHealth `json:"components"`
	TotalChecks     int64             `json:"totalChecks"`
	FailedChecks    int64             `json:"failedChecks"`
	PanicRecoveries int64             `json:"panicRecoveries"`
}

// HealthHTTPHandler runs the checks and reports the result. Degraded still
// answers 200.
func (m *HealthMonitor) HealthHTTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := m.Check(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if health.Status == HealthStatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		data, _ := json.Marshal(health)
		w.Write(data)
	}
}

// LivenessHTTPHandler returns an HTTP handler for liveness checks.
func (m *HealthMonitor) LivenessHTTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"alive"}`))
	}
}

// CooldownHealthCheck reports the gate as degraded while it is cooling.
func CooldownHealthCheck(c *Cooldown) HealthCheck {
	return func(ctx context.Context) ComponentHealth {
		st := c.Status()
		health := ComponentHealth{
			Status:  HealthStatusHealthy,
			Message: "Requests allowed",
			Details: map[string]any{"remaining_seconds": st.RemainingSeconds},
		}
		if st.Active {
			health.Status = HealthStatusDegraded
			health.Message = fmt.Sprintf("Rate limit cooldown, %ds left", st.RemainingSeconds)
		}
		return health
	}
}

// PingHealthCheck turns an error-returning ping into a health check.
// A failing ping is unhealthy.
func PingHealthCheck(ping func(ctx context.Context) error) HealthCheck {
	return func(ctx context.Context) ComponentHealth {
		if err := ping(ctx); err != nil {
			return ComponentHealth{Status: HealthStatusUnhealthy, Message: err.Error()}
		}
		return ComponentHealth{Status: HealthStatusHealthy, Message: "OK"}
	}
}

// AvailabilityHealthCheck reports degraded when available returns false.
func AvailabilityHealthCheck(available func() bool, downMessage string) HealthCheck {
	return func(ctx context.Context) ComponentHealth {
		if !available() {
			return ComponentHealth{Status: HealthStatusDegraded, Message: downMessage}
		}
		return ComponentHealth{Status: HealthStatusHealthy, Message: "Available"}
	}
}
