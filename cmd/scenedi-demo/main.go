// Command scenedi-demo builds a small scene tree, injects it from bindings
// made in code and config.yml, and plays a few turns. With -serve it keeps
// running so the inspector can be queried.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/kbukum/scenedi/bootstrap"
	"github.com/kbukum/scenedi/config"
	"github.com/kbukum/scenedi/di"
	"github.com/kbukum/scenedi/logger"
	"github.com/kbukum/scenedi/scene"
	"github.com/kbukum/scenedi/version"
)

const serviceName = "scenedi-demo"

// DemoConfig is the demo's config.yml.
type DemoConfig struct {
	bootstrap.Settings `yaml:",inline" mapstructure:",squash"`
	Players            []string `yaml:"players" mapstructure:"players"`
}

func main() {
	configFile := flag.String("config", "", "path to config.yml")
	serve := flag.Bool("serve", false, "keep running until interrupted")
	flag.Parse()

	if err := run(*configFile, *serve); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configFile string, serve bool) error {
	var opts []config.LoaderOption
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	cfg := &DemoConfig{}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Name == "" {
		cfg.Name = serviceName
	}
	if len(cfg.Players) == 0 {
		cfg.Players = []string{"alice", "bob"}
	}

	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}
	fmt.Println(version.Banner(app.Name))

	var players []*Player
	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*DemoConfig]) error {
		var err error
		players, err = configure(a)
		return err
	})

	ctx := context.Background()
	if serve {
		return app.Run(ctx)
	}
	return app.RunTask(ctx, func(ctx context.Context) error {
		return play(ctx, app, players)
	})
}

// configure binds the game's dependencies and builds the initial tree.
func configure(a *bootstrap.App[*DemoConfig]) ([]*Player, error) {
	r := a.Registry

	r.Bind(di.Type[Scoreboard](), di.Singleton)
	r.Bind(di.Constructor(newAnnouncer), di.Singleton)
	r.Bind(di.Literal("debug"), di.Value).ToVar("mode")

	r.Bind(di.Interface[Damage](), di.AllMapped)
	di.ToBase[Damage](r.Bind(di.Type[FireDealer](), di.Instance), Fire)
	di.ToBase[Damage](r.Bind(di.Type[IceDealer](), di.Instance), Ice)

	a.Scenes.Register(scene.NewPackedScene("res://bullet.tscn", func() (*scene.Node, error) {
		return scene.NewNode("bullet"), nil
	}))
	bullet, err := a.Scenes.Load("res://bullet.tscn")
	if err != nil {
		return nil, err
	}
	r.Bind(di.SceneOf[*scene.Node](bullet), di.SceneInstance)

	if err := r.Err(); err != nil {
		return nil, err
	}

	players := make([]*Player, 0, len(a.Cfg.Players))
	nodes := make([]*scene.Node, 0, len(a.Cfg.Players)+1)
	for _, name := range a.Cfg.Players {
		p := NewPlayer(name)
		players = append(players, p)
		nodes = append(nodes, scene.NewNode(name, scene.WithConsumer(p)))
	}
	nodes = append(nodes, scene.NewNode("turret", scene.WithConsumer(NewTurret())))

	world := scene.NewNode("world", scene.WithChildren(nodes...))
	return players, a.Root.AddChild(world)
}

func play(ctx context.Context, app *bootstrap.App[*DemoConfig], players []*Player) error {
	for turn := 1; turn <= 3; turn++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, p := range players {
			app.Logger.Info(p.Fire(), logger.Fields("turn", turn))
		}
	}
	if len(players) > 0 {
		fmt.Println("score:", players[0].Board)
	}

	if world, ok := app.Root.Find("/" + app.Root.Name() + "/world"); ok {
		fmt.Printf("world has %d nodes\n", len(world.ChildNodes()))
	}
	return nil
}
