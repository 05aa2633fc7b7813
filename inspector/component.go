package inspector

import (
	"context"
	"sort"
	"strings"

	"github.com/kbukum/scenedi/component"
)

const componentName = "inspector"

var (
	_ component.Component     = (*Component)(nil)
	_ component.Describable   = (*Component)(nil)
	_ component.RouteProvider = (*Component)(nil)
)

// Component wraps Server for lifecycle management.
type Component struct {
	server *Server
}

// NewComponent returns a component backed by s.
func NewComponent(s *Server) *Component {
	return &Component{server: s}
}

func (ic *Component) Name() string { return componentName }

func (ic *Component) Start(ctx context.Context) error { return ic.server.Start(ctx) }

func (ic *Component) Stop(ctx context.Context) error { return ic.server.Stop(ctx) }

// Health reports the server unhealthy until it is listening.
func (ic *Component) Health(ctx context.Context) component.Health {
	if ic.server.listening() {
		return component.Health{Name: componentName, Status: component.StatusHealthy}
	}
	return component.Health{
		Name:    componentName,
		Status:  component.StatusUnhealthy,
		Message: "not listening",
	}
}

func (ic *Component) Describe() component.Description {
	return component.Description{
		Name:    "Inspector",
		Type:    "server",
		Details: ic.server.Addr(),
		Port:    ic.server.config.Port,
	}
}

// Routes returns the registered routes sorted by path, GET first.
func (ic *Component) Routes() []component.Route {
	ginRoutes := ic.server.engine.Routes()
	sort.Slice(ginRoutes, func(i, j int) bool {
		if ginRoutes[i].Path != ginRoutes[j].Path {
			return ginRoutes[i].Path < ginRoutes[j].Path
		}
		return methodOrder(ginRoutes[i].Method) < methodOrder(ginRoutes[j].Method)
	})

	routes := make([]component.Route, 0, len(ginRoutes))
	for _, r := range ginRoutes {
		routes = append(routes, component.Route{
			Method:  r.Method,
			Path:    r.Path,
			Handler: handlerName(r.Handler),
		})
	}
	return routes
}

// handlerName shortens Gin's handler path, e.g.
// "github.com/kbukum/scenedi/inspector.(*Server).tree-fm" becomes "Server.tree".
func handlerName(fullPath string) string {
	name := strings.TrimSuffix(fullPath, "-fm")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.ReplaceAll(name, "(*", "")
	name = strings.ReplaceAll(name, ")", "")
	if parts := strings.SplitN(name, ".", 2); len(parts) == 2 && strings.ToLower(parts[0]) == parts[0] {
		name = parts[1]
	}
	return name
}

func methodOrder(method string) int {
	switch method {
	case "GET":
		return 0
	case "POST":
		return 1
	case "PUT":
		return 2
	case "PATCH":
		return 3
	case "DELETE":
		return 4
	default:
		return 5
	}
}
