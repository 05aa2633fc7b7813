package inspector

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/scenedi/component"
	"github.com/kbukum/scenedi/di"
	"github.com/kbukum/scenedi/errors"
	"github.com/kbukum/scenedi/observability"
	"github.com/kbukum/scenedi/scene"
	"github.com/kbukum/scenedi/validation"
	"github.com/kbukum/scenedi/version"
)

// health reports the registry plus every component. A down component
// turns the response into a 503.
func (s *Server) health(c *gin.Context) {
	sh := observability.NewServiceHealth(s.src.Service, version.GetShortVersion())
	if s.src.Registry != nil {
		sh.AddComponent(observability.RegistryHealth("registry", len(s.src.Registry.Bindings()), s.src.Registry.Err()))
	}
	if s.src.Health != nil {
		for _, h := range s.src.Health(c.Request.Context()) {
			sh.AddComponent(toHealth(h))
		}
	}

	status := http.StatusOK
	if sh.Status == observability.HealthStatusDown {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, sh)
}

func toHealth(h component.Health) observability.Health {
	out := observability.Health{Name: h.Name, Message: h.Message}
	switch h.Status {
	case component.StatusHealthy:
		out.Status = observability.HealthStatusUp
	case component.StatusDegraded:
		out.Status = observability.HealthStatusDegraded
	default:
		out.Status = observability.HealthStatusDown
	}
	return out
}

func (s *Server) info(c *gin.Context) {
	v := version.GetVersionInfo()
	c.JSON(http.StatusOK, gin.H{
		"service":    s.src.Service,
		"version":    v.Version,
		"git_commit": v.GitCommit,
		"build_time": v.BuildTime,
		"go_version": v.GoVersion,
		"uptime":     time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) bindings(c *gin.Context) {
	if s.src.Registry == nil {
		respondWithError(c, errors.ServiceUnavailable("registry"))
		return
	}
	respondOK(c, s.src.Registry.Bindings())
}

// binding resolves a single variable. Only Value bindings are resolved so
// that inspecting never constructs objects or instantiates scenes.
func (s *Server) binding(c *gin.Context) {
	if s.src.Registry == nil {
		respondWithError(c, errors.ServiceUnavailable("registry"))
		return
	}
	name := c.Param("var")
	if appErr := validation.New().VarName("var", name).Validate(); appErr != nil {
		respondWithError(c, appErr)
		return
	}

	key := di.VarName(name)
	b, ok := s.src.Registry.Lookup(key)
	if !ok {
		respondWithError(c, errors.BindingNotFound(key.String()))
		return
	}
	if b.Strategy() != di.Value {
		respondWithError(c, errors.InvalidInput("var",
			fmt.Sprintf("%s uses the %s strategy; only value bindings are resolved", key, b.Strategy())))
		return
	}

	v, err := s.src.Registry.Resolve(key)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondOK(c, gin.H{
		"key":      key.String(),
		"strategy": b.Strategy().String(),
		"type":     fmt.Sprintf("%T", v),
		"value":    fmt.Sprint(v),
	})
}

// tree dumps the scene tree, or the subtree selected by ?node=<id> or
// ?path=<absolute path>.
func (s *Server) tree(c *gin.Context) {
	if s.src.Root == nil {
		respondWithError(c, errors.ServiceUnavailable("scene tree"))
		return
	}

	id, path := c.Query("node"), c.Query("path")
	v := validation.New().OptionalUUID("node", id).NodePath("path", path)
	if appErr := v.Validate(); appErr != nil {
		respondWithError(c, appErr)
		return
	}

	node := s.src.Root
	switch {
	case id != "":
		node = findByID(s.src.Root, id)
		if node == nil {
			respondWithError(c, errors.NotFound("scene node", id))
			return
		}
	case path != "":
		found, ok := s.src.Root.Find(path)
		if !ok {
			respondWithError(c, errors.NotFound("scene node", path))
			return
		}
		node = found
	}
	respondOK(c, node.Snapshot())
}

func findByID(root *scene.Node, id string) *scene.Node {
	var found *scene.Node
	root.Walk(func(n *scene.Node) bool {
		if found != nil {
			return false
		}
		if n.ID() == id {
			found = n
			return false
		}
		return true
	})
	return found
}
