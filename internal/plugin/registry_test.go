package plugin

import (
	"context"
	"errors"
	"net/http"
	"testing"

	pub "github.com/HerbHall/drivermatch/pkg/plugin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type fakeModule struct {
	name      string
	initErr   error
	validErr  error
	inited    bool
	started   bool
	stopped   bool
	stopOrder *[]string
	gotKey    string
}

func (f *fakeModule) Name() string    { return f.name }
func (f *fakeModule) Version() string { return "0.0.1" }
func (f *fakeModule) Init(cfg *viper.Viper, _ *zap.Logger) error {
	f.inited = true
	f.gotKey = cfg.GetString("key")
	return f.initErr
}
func (f *fakeModule) Start(context.Context) error { f.started = true; return nil }
func (f *fakeModule) Stop() error {
	f.stopped = true
	if f.stopOrder != nil {
		*f.stopOrder = append(*f.stopOrder, f.name)
	}
	return nil
}
func (f *fakeModule) Routes() []Route {
	return []Route{{Method: http.MethodGet, Path: "/ping", Handler: func(http.ResponseWriter, *http.Request) {}}}
}
func (f *fakeModule) ValidateConfig() error { return f.validErr }
func (f *fakeModule) Health(context.Context) pub.HealthStatus {
	return pub.HealthStatus{Status: pub.StatusHealthy}
}

func TestRegistry_Lifecycle(t *testing.T) {
	var stops []string
	a := &fakeModule{name: "alpha", stopOrder: &stops}
	b := &fakeModule{name: "beta", stopOrder: &stops}
	off := &fakeModule{name: "off"}

	r := NewRegistry(zap.NewNop())
	for _, m := range []Module{a, b, off} {
		if err := r.Register(m); err != nil {
			t.Fatalf("Register(%s): %v", m.Name(), err)
		}
	}

	v := viper.New()
	v.Set("modules.alpha.key", "value")
	v.Set("modules.off.enabled", false)

	if err := r.InitAll(v); err != nil {
		t.Fatalf("InitAll: %v", err)
	}
	if a.gotKey != "value" {
		t.Errorf("alpha config key = %q, want %q", a.gotKey, "value")
	}
	if off.inited {
		t.Error("disabled module was initialized")
	}
	if !r.Enabled("beta") || r.Enabled("off") {
		t.Error("Enabled() does not reflect init state")
	}

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	if !a.started || !b.started || off.started {
		t.Error("unexpected start state")
	}

	routes := r.AllRoutes()
	if len(routes) != 2 {
		t.Errorf("AllRoutes() has %d modules, want 2", len(routes))
	}
	if _, ok := routes["off"]; ok {
		t.Error("disabled module routes mounted")
	}
	if h := r.Health(context.Background()); len(h) != 2 {
		t.Errorf("Health() = %d entries, want 2", len(h))
	}

	r.StopAll()
	if len(stops) != 2 || stops[0] != "beta" || stops[1] != "alpha" {
		t.Errorf("stop order = %v, want [beta alpha]", stops)
	}
}

func TestRegistry_DuplicateName(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	if err := r.Register(&fakeModule{name: "dup"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(&fakeModule{name: "dup"}); err == nil {
		t.Error("expected error for duplicate module")
	}
}

func TestRegistry_InitErrors(t *testing.T) {
	boom := errors.New("boom")

	r := NewRegistry(zap.NewNop())
	_ = r.Register(&fakeModule{name: "bad", initErr: boom})
	if err := r.InitAll(viper.New()); !errors.Is(err, boom) {
		t.Errorf("InitAll() error = %v, want %v", err, boom)
	}

	r = NewRegistry(zap.NewNop())
	_ = r.Register(&fakeModule{name: "invalid", validErr: boom})
	if err := r.InitAll(viper.New()); !errors.Is(err, boom) {
		t.Errorf("InitAll() validation error = %v, want %v", err, boom)
	}
}
