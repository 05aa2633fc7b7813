package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/scenedi/component"
	"github.com/kbukum/scenedi/di"
	"github.com/kbukum/scenedi/inspector"
	"github.com/kbukum/scenedi/logger"
	"github.com/kbukum/scenedi/observability"
	"github.com/kbukum/scenedi/scene"
	"github.com/kbukum/scenedi/version"
)

// App owns a binding registry, the scene tree it injects and the
// infrastructure around them. C is the application's config type.
//
// Example:
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*DemoConfig]) error {
//	    a.Registry.Bind(di.Type[Logger](), di.Singleton)
//	    return a.Root.AddChild(scene.NewNode("world"))
//	})
//	app.RunTask(ctx, play)
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Registry   *di.Registry
	Root       *scene.Node
	Scenes     *scene.Library
	Components *component.Registry
	Telemetry  *observability.Telemetry
	Inspector  *inspector.Server
	Logger     *logger.Logger
	Summary    *Summary

	gracefulTimeout time.Duration
	onConfigure     []func(ctx context.Context, app *App[C]) error

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp creates an application from a typed config. It applies defaults,
// validates the config, initializes the logger and telemetry, and creates
// the registry and an empty scene root. The inspector is registered as a
// component when enabled.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	s := cfg.GetSettings()
	o := resolveOptions(opts)

	app := &App[C]{
		Name:            s.Name,
		Version:         s.Version,
		Cfg:             cfg,
		Root:            scene.NewRoot(o.rootName),
		Scenes:          scene.NewLibrary(),
		Components:      component.NewRegistry(),
		gracefulTimeout: 15 * time.Second,
	}
	if app.Version == "" {
		app.Version = version.GetShortVersion()
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(&s.Logging)
		app.Logger = logger.GetGlobalLogger()
	}

	tel, err := observability.Setup(context.Background(), s.Name, app.Version, s.Environment, s.Observability)
	if err != nil {
		return nil, fmt.Errorf("telemetry setup: %w", err)
	}
	app.Telemetry = tel
	if tel.Enabled() {
		_ = app.Components.Register(&component.Func{
			ID:     "telemetry",
			Info:   component.Description{Type: "telemetry", Details: "otlp " + s.Observability.Endpoint},
			OnStop: tel.Shutdown,
		})
	}

	regOpts := append([]di.Option{
		di.WithLogger(app.Logger.WithComponent("di")),
		di.WithObserver(tel.Metrics),
	}, o.registryOpts...)
	app.Registry = di.NewRegistry(regOpts...)

	if s.Inspector.Enabled {
		app.Inspector = inspector.New(s.Inspector, inspector.Source{
			Service:  s.Name,
			Registry: app.Registry,
			Root:     app.Root,
			Health:   app.Components.HealthAll,
		}, app.Logger.WithComponent("inspector"))
		_ = app.Components.Register(inspector.NewComponent(app.Inspector))
	}

	app.Summary = NewSummary(s.Name, app.Version)
	return app, nil
}

// RegisterComponent adds a component to the application's registry.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// OnConfigure registers a callback for the configure phase, which runs
// after components start and before the scene tree is injected. Bind
// dependencies and build the initial tree here.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// ReadyCheck verifies that all registered components are healthy and that
// no binding was rejected.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status != component.StatusHealthy {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	if err := a.Registry.Err(); err != nil {
		unhealthy = append(unhealthy, "registry="+err.Error())
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// Run executes the full lifecycle for long-running applications and blocks
// until a shutdown signal or ctx cancellation.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		a.abort()
		return err
	}

	a.Logger.Info("application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)
	return a.stop()
}

// RunTask executes a finite task with the full bootstrap lifecycle and
// shuts down when it returns. SIGINT and SIGTERM cancel the task context.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		a.abort()
		return err
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("received signal, canceling task", logger.Fields("signal", sig.String()))
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx)

	if stopErr := a.stop(); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

// startup runs the phases shared by Run and RunTask: start components,
// OnStart hooks, configure and apply injector config, inject the tree,
// ready check, OnReady hooks.
func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()
	a.Logger.Info("starting application", logger.Fields("name", a.Name, "version", a.Version))

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}
	if err := a.configure(ctx); err != nil {
		return fmt.Errorf("configuration failed: %w", err)
	}
	if err := a.Registry.Injector().ProvideTreeContext(ctx, a.Root); err != nil {
		return fmt.Errorf("injection failed: %w", err)
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("ready check reported issues", logger.Fields("error", err.Error()))
	}
	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.Summary.SetStartupDuration(time.Since(start))
	a.DisplaySummary()
	return nil
}

// configure runs the OnConfigure hooks, then applies the injector section so
// configured values override bindings made in code. A binding rejected by
// either step fails startup.
func (a *App[C]) configure(ctx context.Context) error {
	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return err
		}
	}
	if err := a.Cfg.GetSettings().Injector.Apply(a.Registry, a.Root); err != nil {
		return err
	}
	return a.Registry.Err()
}

// DisplaySummary prints the startup summary to stdout.
func (a *App[C]) DisplaySummary() {
	a.Summary.Collect(a.Components, a.Registry, a.Root)
	a.Summary.Render(os.Stdout, a.Components)
}

// WaitForSignal blocks until an OS interrupt/term signal or context cancellation.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("received shutdown signal", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("context canceled, shutting down")
		return nil
	}
}

// Shutdown performs graceful shutdown. Use when managing your own lifecycle.
func (a *App[C]) Shutdown(ctx context.Context) error {
	return a.stop()
}

// abort releases components after a failed startup.
func (a *App[C]) abort() {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("cleanup after failed startup", logger.Fields("error", err.Error()))
	}
}

// stop runs OnStop hooks then stops components within the graceful timeout.
func (a *App[C]) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("onStop hook error", logger.Fields("error", err.Error()))
		shutdownErr = err
	}
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("shutdown completed with errors", logger.Fields("error", err.Error()))
		if shutdownErr == nil {
			shutdownErr = err
		}
	}

	a.Logger.Info("application shutdown complete")
	return shutdownErr
}
