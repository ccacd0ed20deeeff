package diagserver

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/framegraph/component"
	"github.com/kbukum/framegraph/dag"
	apperrors "github.com/kbukum/framegraph/errors"
	"github.com/kbukum/framegraph/version"
)

const contentTypeDOT = "text/vnd.graphviz; charset=utf-8"

type healthResponse struct {
	Status     component.HealthStatus `json:"status"`
	Timestamp  string                 `json:"timestamp"`
	Components []component.Health     `json:"components"`
}

type timingResponse struct {
	Graph   string             `json:"graph"`
	Cycle   uint64             `json:"cycle"`
	Timings []dag.NodeTiming   `json:"timings"`
	Millis  map[string]float64 `json:"cumulative_ms"`
}

type statusResponse struct {
	Snapshot  dag.Snapshot `json:"snapshot"`
	LastCycle *dag.Result  `json:"last_cycle,omitempty"`
	Updated   time.Time    `json:"updated"`
}

type versionResponse struct {
	version.Info
	UserAgent string `json:"user_agent"`
}

func (s *Server) handleHealth(c *gin.Context) {
	var healths []component.Health
	if s.health != nil {
		healths = s.health(c.Request.Context())
	}
	status := component.Overall(healths)

	code := http.StatusOK
	if status == component.StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, healthResponse{
		Status:     status,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Components: healths,
	})
}

func (s *Server) handleGraph(c *gin.Context) {
	snap, ok := s.store.Snapshot()
	if !ok {
		respondUnavailable(c)
		return
	}
	c.Data(http.StatusOK, contentTypeDOT, []byte(snap.Description))
}

// handleTiming returns every node's timing, or one node's with ?node=name.
func (s *Server) handleTiming(c *gin.Context) {
	snap, ok := s.store.Snapshot()
	if !ok {
		respondUnavailable(c)
		return
	}

	timings := snap.Timings
	if name := c.Query("node"); name != "" {
		timings = nil
		for _, t := range snap.Timings {
			if t.Name == name {
				timings = append(timings, t)
			}
		}
		if len(timings) == 0 {
			respondWithError(c, apperrors.UnknownNode(name))
			return
		}
	}

	snap.Timings = timings
	c.JSON(http.StatusOK, timingResponse{
		Graph:   snap.Name,
		Cycle:   snap.Cycle,
		Timings: timings,
		Millis:  snap.NodeTiming(),
	})
}

func (s *Server) handleTimingDart(c *gin.Context) {
	snap, ok := s.store.Snapshot()
	if !ok {
		respondUnavailable(c)
		return
	}
	var buf bytes.Buffer
	if err := snap.WriteTimingMeasurements(&buf); err != nil {
		respondWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
}

func (s *Server) handleStatus(c *gin.Context) {
	snap, ok := s.store.Snapshot()
	if !ok {
		respondUnavailable(c)
		return
	}
	c.JSON(http.StatusOK, statusResponse{
		Snapshot:  snap,
		LastCycle: s.store.LastResult(),
		Updated:   s.store.Updated(),
	})
}

func (s *Server) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, versionResponse{
		Info:      version.Get(),
		UserAgent: version.UserAgent(),
	})
}

// handleEvents streams a "cycle" event per executed cycle until the client
// goes away or the server stops.
func (s *Server) handleEvents(c *gin.Context) {
	id, events := s.store.events.subscribe()
	defer s.store.events.unsubscribe(id)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	w := c.Writer
	if err := writeEvent(w, eventConnected, marshalEvent(gin.H{"client_id": id})); err != nil {
		return
	}
	w.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(w, eventCycle, data); err != nil {
				return
			}
			w.Flush()
		case <-keepAlive.C:
			if _, err := io.WriteString(w, ": keepalive\n\n"); err != nil {
				return
			}
			w.Flush()
		}
	}
}
