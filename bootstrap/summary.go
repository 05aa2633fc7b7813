package bootstrap

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/kbukum/scenedi/component"
	"github.com/kbukum/scenedi/di"
	"github.com/kbukum/scenedi/scene"
)

// InfrastructureInfo describes a component in the startup summary.
type InfrastructureInfo struct {
	Name    string
	Type    string
	Details string
	Port    int
}

// Summary tracks and displays what an application started with.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	infrastructure  []InfrastructureInfo
	routes          []component.Route
	strategies      map[string]int
	bindings        int
	bindErr         error
	nodes           int
}

// NewSummary creates a new startup summary tracker.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{
		serviceName: serviceName,
		version:     version,
		strategies:  make(map[string]int),
	}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// TrackInfrastructure adds a component entry.
func (s *Summary) TrackInfrastructure(info InfrastructureInfo) {
	s.infrastructure = append(s.infrastructure, info)
}

// TrackRoute records an HTTP route.
func (s *Summary) TrackRoute(method, path, handler string) {
	s.routes = append(s.routes, component.Route{Method: method, Path: path, Handler: handler})
}

// Collect replaces the tracked state with what the component registry,
// binding registry and scene tree report now. Any argument may be nil.
func (s *Summary) Collect(components *component.Registry, registry *di.Registry, root *scene.Node) {
	s.infrastructure = s.infrastructure[:0]
	s.routes = s.routes[:0]
	if components != nil {
		for _, c := range components.All() {
			if d, ok := c.(component.Describable); ok {
				desc := d.Describe()
				if desc.Name == "" {
					desc.Name = c.Name()
				}
				s.TrackInfrastructure(InfrastructureInfo{
					Name: desc.Name, Type: desc.Type, Details: desc.Details, Port: desc.Port,
				})
			}
			if rp, ok := c.(component.RouteProvider); ok {
				s.routes = append(s.routes, rp.Routes()...)
			}
		}
	}

	s.strategies = make(map[string]int)
	s.bindings, s.bindErr = 0, nil
	if registry != nil {
		for _, b := range registry.Bindings() {
			s.strategies[b.Strategy]++
			s.bindings++
		}
		s.bindErr = registry.Err()
	}

	s.nodes = 0
	if root != nil {
		root.Walk(func(*scene.Node) bool {
			s.nodes++
			return true
		})
	}
}

// Render writes the summary and live component health to w.
func (s *Summary) Render(w io.Writer, components *component.Registry) {
	fmt.Fprintf(w, "\n%s %s started in %.2fs\n", s.serviceName, s.version, s.startupDuration.Seconds())

	fmt.Fprintf(w, "\nBindings (%d)\n", s.bindings)
	names := make([]string, 0, len(s.strategies))
	for name := range s.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	for i, name := range names {
		fmt.Fprintf(w, "   %s %s: %d\n", treePrefix(i, len(names)), name, s.strategies[name])
	}
	if s.bindErr != nil {
		fmt.Fprintf(w, "   ! rejected: %s\n", strings.ReplaceAll(s.bindErr.Error(), "\n", "; "))
	}

	fmt.Fprintf(w, "\nScene tree: %d nodes\n", s.nodes)

	if len(s.infrastructure) > 0 {
		fmt.Fprintf(w, "\nInfrastructure\n")
		for i, inf := range s.infrastructure {
			details := inf.Details
			if inf.Port > 0 && !strings.HasSuffix(details, fmt.Sprintf(":%d", inf.Port)) {
				details = fmt.Sprintf("%s (:%d)", details, inf.Port)
			}
			fmt.Fprintf(w, "   %s %s [%s]: %s\n", treePrefix(i, len(s.infrastructure)), inf.Name, inf.Type, details)
		}
	}

	if len(s.routes) > 0 {
		fmt.Fprintf(w, "\nRoutes (%d)\n", len(s.routes))
		for i, r := range s.routes {
			fmt.Fprintf(w, "   %s %-6s %s -> %s\n", treePrefix(i, len(s.routes)), r.Method, r.Path, r.Handler)
		}
	}

	if components != nil {
		results := components.HealthAll(context.Background())
		if len(results) > 0 {
			fmt.Fprintf(w, "\nHealth\n")
			for i, h := range results {
				msg := ""
				if h.Message != "" {
					msg = " (" + h.Message + ")"
				}
				fmt.Fprintf(w, "   %s %s %s: %s%s\n", treePrefix(i, len(results)), healthMark(h.Status), h.Name, h.Status, msg)
			}
		}
	}
	fmt.Fprintln(w)
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthMark(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "+"
	case component.StatusDegraded:
		return "~"
	default:
		return "x"
	}
}
