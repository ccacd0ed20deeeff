package component

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// fake records lifecycle calls into a shared log as "start:name" and
// "stop:name".
type fake struct {
	name     string
	startErr error
	stopErr  error
	status   HealthStatus
	calls    *[]string
}

func (f *fake) Name() string { return f.name }

func (f *fake) Start(context.Context) error {
	f.record("start")
	return f.startErr
}

func (f *fake) Stop(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("stop without deadline")
	}
	f.record("stop")
	return f.stopErr
}

func (f *fake) Health(context.Context) Health {
	return Health{Name: f.name, Status: f.status}
}

func (f *fake) record(op string) {
	if f.calls != nil {
		*f.calls = append(*f.calls, op+":"+f.name)
	}
}

func newFakes(calls *[]string, names ...string) []*fake {
	out := make([]*fake, len(names))
	for i, n := range names {
		out[i] = &fake{name: n, status: StatusHealthy, calls: calls}
	}
	return out
}

func registryOf(t *testing.T, fakes ...*fake) *Registry {
	t.Helper()
	r := NewRegistry()
	for _, f := range fakes {
		if err := r.Register(f); err != nil {
			t.Fatalf("Register(%s): %v", f.name, err)
		}
	}
	return r
}

func TestRegisterDuplicate(t *testing.T) {
	r := registryOf(t, &fake{name: "telemetry"})
	if err := r.Register(&fake{name: "telemetry"}); err == nil {
		t.Error("duplicate name accepted")
	}
	if got := len(r.All()); got != 1 {
		t.Errorf("All has %d components, want 1", got)
	}
}

func TestLifecycleOrder(t *testing.T) {
	var calls []string
	r := registryOf(t, newFakes(&calls, "telemetry", "store", "diagnostics")...)

	if err := r.StartAll(t.Context()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	if err := r.StopAll(t.Context()); err != nil {
		t.Fatalf("StopAll: %v", err)
	}
	// A second stop has nothing left to stop.
	if err := r.StopAll(t.Context()); err != nil {
		t.Fatalf("second StopAll: %v", err)
	}

	want := []string{
		"start:telemetry", "start:store", "start:diagnostics",
		"stop:diagnostics", "stop:store", "stop:telemetry",
	}
	if diff := cmp.Diff(want, calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestStopWithoutStart(t *testing.T) {
	var calls []string
	r := registryOf(t, newFakes(&calls, "telemetry")...)
	if err := r.StopAll(t.Context()); err != nil {
		t.Fatalf("StopAll: %v", err)
	}
	if len(calls) != 0 {
		t.Errorf("calls = %v, want none", calls)
	}
}

func TestStartFailure(t *testing.T) {
	var calls []string
	fakes := newFakes(&calls, "telemetry", "diagnostics", "late")
	fakes[1].startErr = errors.New("address in use")
	r := registryOf(t, fakes...)

	err := r.StartAll(t.Context())
	if !errors.Is(err, fakes[1].startErr) {
		t.Fatalf("StartAll = %v, want wrapped start error", err)
	}
	if err := r.StopAll(t.Context()); err != nil {
		t.Fatalf("StopAll: %v", err)
	}

	want := []string{"start:telemetry", "start:diagnostics", "stop:telemetry"}
	if diff := cmp.Diff(want, calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestStartResumesAfterFailure(t *testing.T) {
	var calls []string
	fakes := newFakes(&calls, "a", "b")
	fakes[1].startErr = errors.New("not yet")
	r := registryOf(t, fakes...)

	if err := r.StartAll(t.Context()); err == nil {
		t.Fatal("expected start error")
	}
	fakes[1].startErr = nil
	if err := r.StartAll(t.Context()); err != nil {
		t.Fatalf("retry StartAll: %v", err)
	}

	want := []string{"start:a", "start:b", "start:b"}
	if diff := cmp.Diff(want, calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestStopErrorsJoined(t *testing.T) {
	var calls []string
	fakes := newFakes(&calls, "a", "b")
	errA, errB := errors.New("a stuck"), errors.New("b stuck")
	fakes[0].stopErr, fakes[1].stopErr = errA, errB
	r := registryOf(t, fakes...)

	if err := r.StartAll(t.Context()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	err := r.StopAll(t.Context())
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("StopAll = %v, want both stop errors", err)
	}
	if len(calls) != 4 {
		t.Errorf("calls = %v, want both components stopped", calls)
	}
}

func TestHealthAll(t *testing.T) {
	fakes := newFakes(nil, "telemetry", "store")
	fakes[1].status = StatusDegraded
	r := registryOf(t, fakes...)

	want := []Health{
		{Name: "telemetry", Status: StatusHealthy},
		{Name: "store", Status: StatusDegraded},
	}
	if diff := cmp.Diff(want, r.HealthAll(t.Context())); diff != "" {
		t.Errorf("HealthAll mismatch (-want +got):\n%s", diff)
	}
}

func TestAllReturnsCopy(t *testing.T) {
	r := registryOf(t, newFakes(nil, "a", "b")...)
	all := r.All()
	all[0] = &fake{name: "z"}
	if got := r.All()[0].Name(); got != "a" {
		t.Errorf("All()[0] = %s after caller mutation", got)
	}
}

func TestOverall(t *testing.T) {
	tests := []struct {
		name    string
		healths []Health
		want    HealthStatus
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", []Health{{Status: StatusHealthy}, {Status: StatusHealthy}}, StatusHealthy},
		{"degraded", []Health{{Status: StatusHealthy}, {Status: StatusDegraded}}, StatusDegraded},
		{"unhealthy first", []Health{{Status: StatusUnhealthy}, {Status: StatusDegraded}}, StatusUnhealthy},
		{"unhealthy last", []Health{{Status: StatusDegraded}, {Status: StatusUnhealthy}}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overall(tt.healths); got != tt.want {
				t.Errorf("Overall() = %s, want %s", got, tt.want)
			}
		})
	}
}
