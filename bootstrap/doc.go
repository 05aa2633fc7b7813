// Package bootstrap runs a scene application.
//
// NewApp loads nothing itself: the caller loads a config embedding
// Settings (usually with config.LoadConfig) and hands it over. NewApp then
// initializes logging and telemetry and creates the binding registry, the
// scene root and the component registry. Run and RunTask drive the
// lifecycle:
//
//	start components -> OnStart -> OnConfigure -> injector config -> ProvideTree(root) -> OnReady
//
// and on exit OnStop hooks run before components stop in reverse order.
package bootstrap
