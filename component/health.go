package component

// HealthStatus is a component's health state.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// Health is one component's health report.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// severity orders statuses from best to worst.
var severity = map[HealthStatus]int{
	StatusHealthy:   0,
	StatusDegraded:  1,
	StatusUnhealthy: 2,
}

// Overall is the worst status among healths, healthy when empty. Unknown
// statuses count as healthy.
func Overall(healths []Health) HealthStatus {
	worst := StatusHealthy
	for _, h := range healths {
		if severity[h.Status] > severity[worst] {
			worst = h.Status
		}
	}
	return worst
}
