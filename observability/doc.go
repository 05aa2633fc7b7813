// Package observability provides OpenTelemetry tracing and metrics for the
// registry and tree injector.
//
// Setup:
//
//	tel, err := observability.Setup(ctx, "scenedi-demo", version.GetVersion(), "development", cfg.Observability)
//	defer tel.Shutdown(ctx)
//	r := di.NewRegistry(di.WithObserver(tel.Metrics))
//
// Spans:
//
//	ctx, span := observability.StartSpan(ctx, "level.load")
//	defer span.End()
//
// Health:
//
//	health := observability.NewServiceHealth("scenedi-demo", version.GetVersion())
//	health.AddComponent(observability.RegistryHealth("registry", len(r.Bindings()), r.Err()))
package observability
