package diagserver

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/kbukum/framegraph/dag"
)

const (
	eventConnected = "connected"
	eventCycle     = "cycle"

	clientBuffer = 64
)

// cycleEvent is the payload streamed to /events after every cycle.
type cycleEvent struct {
	Graph      string         `json:"graph"`
	Cycle      uint64         `json:"cycle"`
	Success    bool           `json:"success"`
	DurationMs float64        `json:"duration_ms"`
	Counts     map[string]int `json:"counts"`
	Failed     []string       `json:"failed,omitempty"`
}

func newCycleEvent(graph string, res *dag.Result) cycleEvent {
	ev := cycleEvent{
		Graph:      graph,
		Cycle:      res.Cycle,
		Success:    res.Success,
		DurationMs: float64(res.Duration.Microseconds()) / 1000,
		Counts:     make(map[string]int, 4),
	}
	for status, n := range res.Counts() {
		ev.Counts[status.String()] = n
	}
	for _, nr := range res.NodeResults {
		if nr.Status == dag.StatusFailure {
			ev.Failed = append(ev.Failed, nr.Name)
		}
	}
	return ev
}

// hub fans events out to streaming clients. A client whose buffer is full
// misses events rather than stalling the publisher.
type hub struct {
	mu      sync.Mutex
	clients map[string]chan []byte
}

func newHub() *hub {
	return &hub{clients: make(map[string]chan []byte)}
}

func (h *hub) subscribe() (string, <-chan []byte) {
	id := uuid.NewString()
	ch := make(chan []byte, clientBuffer)

	h.mu.Lock()
	h.clients[id] = ch
	h.mu.Unlock()
	return id, ch
}

func (h *hub) unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(ch)
	}
}

// broadcast queues data for every client and returns how many accepted it.
func (h *hub) broadcast(data []byte) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	sent := 0
	for _, ch := range h.clients {
		select {
		case ch <- data:
			sent++
		default:
		}
	}
	return sent
}

// disconnectAll closes every client stream. The hub stays usable.
func (h *hub) disconnectAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.clients {
		close(ch)
		delete(h.clients, id)
	}
}

func (h *hub) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func writeEvent(w io.Writer, event string, data []byte) error {
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}

func marshalEvent(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte(`{}`)
	}
	return data
}
