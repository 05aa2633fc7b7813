// Package scene is a small in-memory scene tree for use with package di.
//
// Node implements di.Node, di.Parent and di.Liveness and can carry a
// di.Consumer payload. PackedScene implements di.SceneSource by building a
// fresh tree from a template on every instantiation, and Library looks
// scenes up by resource path.
//
//	world := scene.NewRoot("world")
//	player := scene.NewNode("player", scene.WithConsumer(script))
//	_ = world.AddChild(player)
//
//	bullet := scene.NewPackedScene("res://bullet", func() (*scene.Node, error) {
//	    return scene.NewNode("bullet"), nil
//	})
//	r.Bind(di.SceneOf[*scene.Node](bullet), di.SceneInstance).ToVar("bullet")
package scene
