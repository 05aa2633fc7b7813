// Package testutil provides test components and fixtures for code built on
// the registry and scene tree.
//
// TestComponent extends component.Component with Reset, Snapshot and
// Restore so fixtures can be rewound between test cases. SceneFixture is
// the main implementation: it binds, builds and injects a tree on Start.
//
//	func TestPlayer(t *testing.T) {
//	    fx := testutil.NewSceneFixture("world", bind, build)
//	    testutil.T(t).Setup(fx)
//
//	    layout := testutil.T(t).Snapshot(fx)
//	    // resolve scene instances into the tree ...
//	    testutil.T(t).Restore(fx, layout)
//	}
//
// Recorder is a consumer that records what the injector gave it, and
// NewRegistry returns a registry that logs nothing.
package testutil
