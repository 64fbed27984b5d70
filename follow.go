package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"mcbot-pathing/pathing"
)

const followWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// followMessage is one frame sent to a movement controller
type followMessage struct {
	Type     string            `json:"type"` // "step", "done", "error" or "failed"
	Index    int               `json:"index,omitempty"`
	Position *pathing.Vector3i `json:"position,omitempty"`
	Goal     bool              `json:"goal,omitempty"`
	Cost     float64           `json:"cost,omitempty"`
	Message  string            `json:"message,omitempty"`
}

// parseVector reads prefix+"x", prefix+"y" and prefix+"z" from the query
func parseVector(q url.Values, prefix string) (pathing.Vector3i, error) {
	var out [3]int
	for i, axis := range []string{"x", "y", "z"} {
		raw := q.Get(prefix + axis)
		v, err := strconv.Atoi(raw)
		if err != nil {
			return pathing.Vector3i{}, fmt.Errorf("invalid %s%s %q: %w", prefix, axis, raw, err)
		}
		out[i] = v
	}
	return pathing.Vector3i{X: out[0], Y: out[1], Z: out[2]}, nil
}

// GET /follow?sx=&sy=&sz=&ex=&ey=&ez= - Stream a route one step per frame
func followHandler(w http.ResponseWriter, r *http.Request) {
	start, err := parseVector(r.URL.Query(), "s")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	end, err := parseVector(r.URL.Query(), "e")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	graph := currentGraph()
	if graph == nil {
		http.Error(w, "Graph not built. Call /buildGraph first", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ Websocket upgrade failed: %v\n", err)
		return
	}
	defer conn.Close()

	log.Printf("🚶 Follow %v -> %v\n", start, end)

	plan, _, err := graph.Route(start, end)
	if err != nil {
		log.Printf("❌ Follow search failed: %v\n", err)
		writeFollow(conn, searchFailure(err))
		closeFollow(conn)
		return
	}

	if err := streamPlan(conn, plan); err != nil {
		log.Printf("⚠️  Follow stream ended early: %v\n", err)
		return
	}
	closeFollow(conn)
}

// searchFailure turns a search error into the frame sent before closing.
// Only an unreachable goal is reported as a missing path.
func searchFailure(err error) followMessage {
	if errors.Is(err, pathing.ErrNoPath) || errors.Is(err, pathing.ErrEmptyGraph) {
		return followMessage{Type: "error", Message: "no path found"}
	}
	return followMessage{Type: "failed", Message: "search failed: " + err.Error()}
}

// streamPlan walks the plan cursor from the start and sends every step
func streamPlan(conn *websocket.Conn, plan *pathing.Plan) error {
	plan.Reset()
	goal, _ := plan.Goal()

	for index := 0; ; index++ {
		step, err := plan.Next()
		if errors.Is(err, pathing.ErrCursorExhausted) {
			break
		}
		if err != nil {
			return err
		}

		position := step.Position
		msg := followMessage{
			Type:     "step",
			Index:    index,
			Position: &position,
			Goal:     !plan.HasNext() && step.Node == goal.Node,
		}
		if err := writeFollow(conn, msg); err != nil {
			return err
		}
	}

	return writeFollow(conn, followMessage{Type: "done", Cost: plan.Cost()})
}

func writeFollow(conn *websocket.Conn, msg followMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(followWriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}

func closeFollow(conn *websocket.Conn) {
	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(followWriteTimeout),
	)
}
