// Package patchserver hosts a websocket endpoint that evaluates
// patch-value expressions on behalf of a remote editor or patch-authoring
// tool, adapted from the RISC-V emulator's standalone websocket debug
// server (emulator/standalone.go). Where that server pushed console and
// framebuffer updates for a running program, this one takes one JSON
// request per expression and returns one JSON response — there is no
// long-running session to stream.
package patchserver

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/dcbailey/patchexpr/expr"
)

// EvalRequest is the wire shape of one evaluation request: Expression is
// the raw text, RelSource anchors relative patch-values, and Registers
// seeds the evaluator's register bank for expressions that reference one.
type EvalRequest struct {
	Type       string          `json:"type"`
	Expression string          `json:"expression"`
	RelSource  uint64          `json:"relSource"`
	Registers  *expr.RegisterBank `json:"registers,omitempty"`
}

type EvalResponse struct {
	Type   string `json:"type"`
	OK     bool   `json:"ok"`
	Value  uint64 `json:"value,omitempty"`
	Tag    string `json:"tag,omitempty"`
	Error  string `json:"error,omitempty"`
	Cursor int    `json:"cursor,omitempty"`
}

// Server evaluates requests against a shared Collaborators environment
// (codecave/option/breakpoint lookups, CPU feature probing, and an optional
// memory image), the same wiring a patch-loading host provides in-process.
type Server struct {
	Collaborators expr.Collaborators
	Upgrader      websocket.Upgrader
}

func New(collab expr.Collaborators) *Server {
	return &Server{
		Collaborators: collab,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the connection and evaluates one expression per
// inbound text message until the client disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("patchserver: upgrade:", err)
		return
	}
	defer conn.Close()

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			log.Println("patchserver: read:", err)
			return
		}

		var req EvalRequest
		if err := json.Unmarshal(messageBytes, &req); err != nil {
			conn.WriteJSON(EvalResponse{Type: "eval", OK: false, Error: "invalid request: " + err.Error()})
			continue
		}

		resp := s.evaluate(req)
		if err := conn.WriteJSON(resp); err != nil {
			log.Println("patchserver: write:", err)
			return
		}
	}
}

func (s *Server) evaluate(req EvalRequest) EvalResponse {
	regs := req.Registers
	if regs == nil {
		regs = &expr.RegisterBank{}
	}

	ctx := &expr.Context{
		Regs:          regs,
		RelSource:     req.RelSource,
		Collaborators: s.Collaborators,
	}
	diags := expr.NewDiagnostics()

	cursor, val, err := expr.Evaluate(req.Expression, 0, ctx, diags)
	if err != nil {
		return EvalResponse{Type: "eval", OK: false, Error: err.Error(), Cursor: cursor}
	}

	return EvalResponse{
		Type:   "eval",
		OK:     true,
		Value:  val.Uint(),
		Tag:    val.Tag.String(),
		Cursor: cursor,
	}
}

// ListenAndServe hosts the evaluation endpoint at addr, blocking until the
// server stops or errors — mirroring RunStandaloneWebserver's role as the
// module's development entry point.
func ListenAndServe(addr string, collab expr.Collaborators) error {
	srv := New(collab)
	mux := http.NewServeMux()
	mux.HandleFunc("/eval", srv.ServeHTTP)
	log.Printf("patchserver: listening on %s\n", addr)
	return http.ListenAndServe(addr, mux)
}
