package bootstrap

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/scenedi/component"
	"github.com/kbukum/scenedi/config"
	"github.com/kbukum/scenedi/di"
	"github.com/kbukum/scenedi/errors"
	"github.com/kbukum/scenedi/logger"
	"github.com/kbukum/scenedi/scene"
)

// testConfig is a minimal application config embedding Settings.
type testConfig struct {
	Settings `yaml:",inline" mapstructure:",squash"`
}

func newTestConfig(name string) *testConfig {
	return &testConfig{Settings: Settings{
		ServiceConfig: config.ServiceConfig{Name: name, Version: "1.0.0", Environment: "development"},
	}}
}

func newTestApp(t *testing.T, cfg *testConfig, opts ...Option) *App[*testConfig] {
	t.Helper()
	opts = append([]Option{WithLogger(logger.Nop()), WithGracefulTimeout(time.Second)}, opts...)
	app, err := NewApp(cfg, opts...)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app
}

// mockComponent implements component.Component for testing.
type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	health   component.Health
	started  bool
	stopped  bool
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	m.started = true
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	m.stopped = true
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) component.Health {
	return m.health
}

type scoreboard struct{ points int }

type hero struct {
	di.Slots
	Board  *scoreboard
	Mode   string
	Bullet *scene.Node
}

func newHero() *hero {
	h := &hero{}
	di.Declare(&h.Slots, "board", di.TypeOf[*scoreboard](), &h.Board)
	di.Declare(&h.Slots, "mode", di.Key{}, &h.Mode)
	di.Declare(&h.Slots, "bullet", di.TypeOf[*scene.Node](), &h.Bullet)
	return h
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t, newTestConfig("test-svc"))

	if app.Name != "test-svc" || app.Version != "1.0.0" {
		t.Errorf("unexpected identity %s %s", app.Name, app.Version)
	}
	if app.Registry == nil || app.Components == nil || app.Scenes == nil || app.Logger == nil {
		t.Fatal("expected registry, components, scenes and logger")
	}
	if app.Root == nil || app.Root.Path() != "/root" {
		t.Errorf("expected scene root at /root, got %v", app.Root)
	}
	if app.Telemetry == nil || app.Telemetry.Enabled() {
		t.Error("expected telemetry to be set up and disabled")
	}
	if app.Inspector != nil || len(app.Components.All()) != 0 {
		t.Error("expected no components by default")
	}
	if app.Cfg.Inspector.Port != 8089 || app.Cfg.Observability.SampleRate != 1.0 {
		t.Error("expected section defaults to be applied")
	}
	if app.gracefulTimeout != time.Second {
		t.Errorf("expected 1s graceful timeout, got %v", app.gracefulTimeout)
	}
}

func TestNewAppRootName(t *testing.T) {
	app := newTestApp(t, newTestConfig("svc"), WithRootName("level"))
	if app.Root.Path() != "/level" {
		t.Errorf("expected /level, got %s", app.Root.Path())
	}
}

func TestNewAppValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*testConfig)
	}{
		{"missing name", func(c *testConfig) { c.Name = "" }},
		{"bad environment", func(c *testConfig) { c.Environment = "qa" }},
		{"relative default parent", func(c *testConfig) { c.Injector.DefaultParent = "world" }},
		{"sample rate out of range", func(c *testConfig) { c.Observability.SampleRate = 2 }},
		{"bad inspector port", func(c *testConfig) { c.Inspector.Port = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig("svc")
			tt.mutate(cfg)
			if _, err := NewApp(cfg, WithLogger(logger.Nop())); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestNewAppInspector(t *testing.T) {
	cfg := newTestConfig("svc")
	cfg.Inspector.Enabled = true
	app := newTestApp(t, cfg)

	if app.Inspector == nil {
		t.Fatal("expected inspector server")
	}
	if app.Components.Get("inspector") == nil {
		t.Error("expected inspector to be registered as a component")
	}
}

func TestRegisterComponentDuplicate(t *testing.T) {
	app := newTestApp(t, newTestConfig("svc"))
	if err := app.RegisterComponent(&mockComponent{name: "a"}); err != nil {
		t.Fatalf("RegisterComponent failed: %v", err)
	}
	if err := app.RegisterComponent(&mockComponent{name: "a"}); err == nil {
		t.Error("expected duplicate registration error")
	}
}

func TestRunTaskInjectsTree(t *testing.T) {
	cfg := newTestConfig("svc")
	cfg.Injector = config.InjectorConfig{
		DefaultParent: "/root/world",
		Values:        map[string]any{"mode": "release"},
	}
	app := newTestApp(t, cfg)

	h1, h2 := newHero(), newHero()
	app.Scenes.Register(scene.NewPackedScene("res://bullet", func() (*scene.Node, error) {
		return scene.NewNode("bullet"), nil
	}))

	app.OnConfigure(func(ctx context.Context, a *App[*testConfig]) error {
		a.Registry.Bind(di.Type[scoreboard](), di.Singleton)
		a.Registry.Bind(di.Literal("debug-mode"), di.Value).ToVar("mode")

		bullet, err := a.Scenes.Load("res://bullet")
		if err != nil {
			return err
		}
		a.Registry.Bind(di.SceneOf[*scene.Node](bullet), di.SceneInstance)

		world := scene.NewNode("world", scene.WithChildren(
			scene.NewNode("h1", scene.WithConsumer(h1)),
			scene.NewNode("h2", scene.WithConsumer(h2)),
		))
		return a.Root.AddChild(world)
	})

	var world *scene.Node
	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		world, _ = app.Root.Find("/root/world")
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}

	if h1.Board == nil || h1.Board != h2.Board {
		t.Error("expected both heroes to share the scoreboard singleton")
	}
	if h1.Mode != "release" || h2.Mode != "release" {
		t.Errorf("expected configured mode to override code binding, got %q/%q", h1.Mode, h2.Mode)
	}
	if h1.Bullet == nil || h1.Bullet == h2.Bullet {
		t.Fatal("expected a distinct bullet instance per hero")
	}
	if h1.Bullet.Parent() != world {
		t.Errorf("expected bullets under the configured default parent, got %v", h1.Bullet.Parent())
	}
	if len(world.ChildNodes()) != 4 {
		t.Errorf("expected 2 heroes and 2 bullets under world, got %d", len(world.ChildNodes()))
	}
}

func TestRunTaskInjectionFailure(t *testing.T) {
	app := newTestApp(t, newTestConfig("svc"))
	comp := &mockComponent{name: "c", health: component.Health{Name: "c", Status: component.StatusHealthy}}
	_ = app.RegisterComponent(comp)

	app.OnConfigure(func(ctx context.Context, a *App[*testConfig]) error {
		return a.Root.AddChild(scene.NewNode("h", scene.WithConsumer(newHero())))
	})

	taskRan := false
	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		taskRan = true
		return nil
	})
	if !di.IsBindingNotFound(err) {
		t.Fatalf("expected binding not found, got %v", err)
	}
	if taskRan {
		t.Error("task must not run after a failed injection")
	}
	if !comp.stopped {
		t.Error("expected started components to be stopped after a failed startup")
	}
}

func TestRunTaskMissingDefaultParent(t *testing.T) {
	cfg := newTestConfig("svc")
	cfg.Injector.DefaultParent = "/root/missing"
	app := newTestApp(t, cfg)

	err := app.RunTask(context.Background(), func(context.Context) error { return nil })
	if !errors.HasCode(err, errors.ErrCodeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestLifecycleOrder(t *testing.T) {
	app := newTestApp(t, newTestConfig("svc"))
	var events []string
	record := func(name string) Hook {
		return func(context.Context) error {
			events = append(events, name)
			return nil
		}
	}
	app.OnStart(record("start"))
	app.OnConfigure(func(context.Context, *App[*testConfig]) error {
		events = append(events, "configure")
		return nil
	})
	app.OnReady(record("ready"))
	app.OnStop(record("stop"))

	err := app.RunTask(context.Background(), func(context.Context) error {
		events = append(events, "task")
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}
	want := "[start configure ready task stop]"
	if fmt.Sprint(events) != want {
		t.Errorf("expected %s, got %v", want, events)
	}
}

func TestRunTaskErrors(t *testing.T) {
	boom := fmt.Errorf("boom")
	tests := []struct {
		name  string
		setup func(*App[*testConfig])
		want  string
	}{
		{"start hook", func(a *App[*testConfig]) { a.OnStart(func(context.Context) error { return boom }) }, "onStart hook failed"},
		{"configure", func(a *App[*testConfig]) {
			a.OnConfigure(func(context.Context, *App[*testConfig]) error { return boom })
		}, "configuration failed"},
		{"ready hook", func(a *App[*testConfig]) { a.OnReady(func(context.Context) error { return boom }) }, "onReady hook failed"},
		{"component start", func(a *App[*testConfig]) {
			_ = a.RegisterComponent(&mockComponent{name: "bad", startErr: boom})
		}, "initialization failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, newTestConfig("svc"))
			tt.setup(app)
			err := app.RunTask(context.Background(), func(context.Context) error { return nil })
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestRunTaskRejectedBinding(t *testing.T) {
	app := newTestApp(t, newTestConfig("svc"))
	comp := &mockComponent{name: "c", health: component.Health{Name: "c", Status: component.StatusHealthy}}
	_ = app.RegisterComponent(comp)
	app.OnConfigure(func(_ context.Context, a *App[*testConfig]) error {
		a.Registry.Bind(di.Literal(5), di.Instance)
		return nil
	})

	ran := false
	err := app.RunTask(context.Background(), func(context.Context) error {
		ran = true
		return nil
	})
	if !di.IsInvalidBinding(err) {
		t.Fatalf("expected invalid binding error, got %v", err)
	}
	if !strings.Contains(err.Error(), "configuration failed") {
		t.Errorf("expected configuration phase in error, got %v", err)
	}
	if ran {
		t.Error("expected the task not to run")
	}
	if !comp.stopped {
		t.Error("expected started components to be stopped")
	}
}

func TestRunTaskErrorWins(t *testing.T) {
	app := newTestApp(t, newTestConfig("svc"))
	app.OnStop(func(context.Context) error { return fmt.Errorf("stop failed") })

	err := app.RunTask(context.Background(), func(context.Context) error { return fmt.Errorf("task failed") })
	if err == nil || err.Error() != "task failed" {
		t.Errorf("expected task error, got %v", err)
	}

	app2 := newTestApp(t, newTestConfig("svc"))
	app2.OnStop(func(context.Context) error { return fmt.Errorf("stop failed") })
	if err := app2.RunTask(context.Background(), func(context.Context) error { return nil }); err == nil {
		t.Error("expected stop error when the task succeeds")
	}
}

func TestRunTaskCancellation(t *testing.T) {
	app := newTestApp(t, newTestConfig("svc"))
	ctx, cancel := context.WithCancel(context.Background())

	err := app.RunTask(ctx, func(taskCtx context.Context) error {
		cancel()
		<-taskCtx.Done()
		return taskCtx.Err()
	})
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	app := newTestApp(t, newTestConfig("svc"))
	comp := &mockComponent{name: "c", health: component.Health{Name: "c", Status: component.StatusHealthy}}
	_ = app.RegisterComponent(comp)

	ctx, cancel := context.WithCancel(context.Background())
	app.OnReady(func(context.Context) error {
		cancel()
		return nil
	})
	if err := app.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !comp.started || !comp.stopped {
		t.Errorf("expected component started and stopped, got %+v", comp)
	}
}

func TestReadyCheck(t *testing.T) {
	tests := []struct {
		name    string
		status  component.HealthStatus
		bindBad bool
		wantErr bool
	}{
		{"healthy", component.StatusHealthy, false, false},
		{"unhealthy", component.StatusUnhealthy, false, true},
		{"degraded", component.StatusDegraded, false, true},
		{"rejected binding", component.StatusHealthy, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, newTestConfig("svc"))
			_ = app.RegisterComponent(&mockComponent{name: "c", health: component.Health{Name: "c", Status: tt.status}})
			if tt.bindBad {
				app.Registry.Bind(di.Literal("x"), di.Singleton)
			}
			err := app.ReadyCheck(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestGetSettings(t *testing.T) {
	cfg := newTestConfig("svc")
	if cfg.GetSettings() != &cfg.Settings {
		t.Error("expected GetSettings to return the embedded settings")
	}
	if cfg.GetServiceConfig().Name != "svc" {
		t.Error("expected promoted service config")
	}
}

func TestSummaryCollectAndRender(t *testing.T) {
	r := di.NewRegistry(di.WithLogger(logger.Nop()))
	r.Bind(di.Type[scoreboard](), di.Singleton)
	r.Bind(di.Literal("debug-mode"), di.Value).ToVar("mode")
	r.Bind(di.Literal(3), di.Value).ToVar("lives")
	r.Bind(di.Literal("x"), di.Instance)

	root := scene.NewRoot("root", scene.WithChildren(scene.NewNode("world")))

	components := component.NewRegistry()
	_ = components.Register(&component.Func{
		ID:   "telemetry",
		Info: component.Description{Type: "telemetry", Details: "otlp localhost:4318"},
	})

	s := NewSummary("svc", "1.0.0")
	s.SetStartupDuration(1500 * time.Millisecond)
	s.Collect(components, r, root)

	var buf bytes.Buffer
	s.Render(&buf, components)
	out := buf.String()

	for _, want := range []string{
		"svc 1.0.0 started in 1.50s",
		"Bindings (3)",
		"singleton: 1",
		"value: 2",
		"rejected:",
		"Scene tree: 2 nodes",
		"telemetry [telemetry]: otlp localhost:4318",
		"+ telemetry: healthy",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected summary to contain %q:\n%s", want, out)
		}
	}
}

func TestSummaryNilSources(t *testing.T) {
	s := NewSummary("svc", "dev")
	s.TrackRoute("GET", "/health", "health")
	s.Collect(nil, nil, nil)

	var buf bytes.Buffer
	s.Render(&buf, nil)
	if !strings.Contains(buf.String(), "Bindings (0)") || strings.Contains(buf.String(), "Routes") {
		t.Errorf("unexpected summary:\n%s", buf.String())
	}
}

func TestTreePrefix(t *testing.T) {
	if treePrefix(0, 2) != "├──" || treePrefix(1, 2) != "└──" {
		t.Error("unexpected tree prefixes")
	}
}
