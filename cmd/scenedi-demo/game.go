package main

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kbukum/scenedi/di"
	"github.com/kbukum/scenedi/scene"
)

// Element discriminates damage dealers mapped to Damage.
type Element string

const (
	Fire Element = "fire"
	Ice  Element = "ice"
)

// Damage is implemented by every dealer mapped with ToBase.
type Damage interface {
	Deal() int
	Element() Element
}

type FireDealer struct{}

func (*FireDealer) Deal() int        { return 12 }
func (*FireDealer) Element() Element { return Fire }

type IceDealer struct{}

func (*IceDealer) Deal() int        { return 7 }
func (*IceDealer) Element() Element { return Ice }

// Scoreboard is shared by every player through a singleton binding.
type Scoreboard struct {
	points map[string]int
	mu     sync.Mutex
}

func (s *Scoreboard) Init() error {
	s.points = make(map[string]int)
	return nil
}

func (s *Scoreboard) Add(player string, n int) {
	s.mu.Lock()
	s.points[player] += n
	s.mu.Unlock()
}

func (s *Scoreboard) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.points))
	for name := range s.points {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%d", name, s.points[name]))
	}
	return strings.Join(parts, " ")
}

// Announcer is built by a constructor that reads the mode variable.
type Announcer struct {
	Mode string
}

func (a *Announcer) Say(format string, args ...any) string {
	return fmt.Sprintf("[%s] ", a.Mode) + fmt.Sprintf(format, args...)
}

func newAnnouncer(r di.Resolver) (*Announcer, error) {
	mode, err := di.GetVar[string](r, "mode")
	if err != nil {
		return nil, err
	}
	return &Announcer{Mode: mode}, nil
}

// Player declares every kind of slot the injector fills.
type Player struct {
	di.Slots
	Name      string
	Board     *Scoreboard
	Announcer *Announcer
	Dealers   []Damage
	Lives     int
	Bullet    *scene.Node
}

func NewPlayer(name string) *Player {
	p := &Player{Name: name}
	di.Declare(&p.Slots, "board", di.TypeOf[*Scoreboard](), &p.Board)
	di.Declare(&p.Slots, "announcer", di.TypeOf[*Announcer](), &p.Announcer)
	di.DeclareAll[Damage](&p.Slots, "dealers", &p.Dealers)
	di.DeclareOptional(&p.Slots, "lives", di.Key{}, &p.Lives)
	di.Declare(&p.Slots, "bullet", di.TypeOf[*scene.Node](), &p.Bullet)
	return p
}

// Fire deals damage with every dealer and returns the announcement.
func (p *Player) Fire() string {
	total := 0
	for _, d := range p.Dealers {
		total += d.Deal()
	}
	p.Board.Add(p.Name, total)
	return p.Announcer.Say("%s fires %s for %d", p.Name, p.Bullet.Name(), total)
}

// Turret only wants the fire dealer.
type Turret struct {
	di.Slots
	Board  *Scoreboard
	Dealer Damage
}

func NewTurret() *Turret {
	t := &Turret{}
	di.Declare(&t.Slots, "board", di.TypeOf[*Scoreboard](), &t.Board)
	di.Declare(&t.Slots, "dealer", di.Mapped[Damage](Fire), &t.Dealer)
	return t
}
