// Package di provides the binding registry, resolver and tree injector for
// scene-graph runtimes.
//
// Callers declare bindings ("when something needs T, produce V using
// strategy S") on an explicitly constructed Registry, then either resolve
// them directly or walk a tree of consumer nodes and fill their declared
// dependency slots.
//
// # Binding
//
//	r := di.NewRegistry()
//	r.Bind(di.Type[Logger](), di.Singleton)
//	r.Bind(di.Literal("debug-mode"), di.Value).ToVar("mode")
//	r.Bind(di.Type[FireDealer](), di.Instance).ToBase(reflect.TypeFor[Damage](), Fire)
//	if err := r.Err(); err != nil {
//	    return err
//	}
//
// # Resolution
//
//	log, err := di.Get[*Logger](r)
//	mode, err := r.GetWithVarName("mode")
//	dealers, err := di.GetAllMapped[Damage](r)
//
// # Tree injection
//
//	r.SetDefaultSceneParent(world)
//	if err := r.ProvideTree(root); err != nil {
//	    return err
//	}
//
// A Registry is meant to be populated once and then read. Bind everything
// before resolution starts on other goroutines.
package di
