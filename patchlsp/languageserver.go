// Package patchlsp exposes the expression evaluator as a Language Server
// Protocol server, adapted from the assembly language server
// (languageServer/languageServer.go): same stdio/TCP transport and
// jsonrpc2.VSCodeObjectCodec wiring, but the document language is patch
// definition files full of bracketed expressions rather than RISC-V
// assembly, and diagnostics/hover come from expr.Evaluate instead of the
// assembler.
package patchlsp

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"os"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/dcbailey/patchexpr/util"
)

type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdrwc) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}

// ListenAndServe runs the server over stdio, the mode an editor extension
// launches as a child process.
func ListenAndServe() {
	h := handler{}
	<-jsonrpc2.NewConn(context.Background(), jsonrpc2.NewBufferedStream(stdrwc{}, jsonrpc2.VSCodeObjectCodec{}), h).DisconnectNotify()
}

// ListenAndServeTCP runs the server over TCP at addr, useful for attaching
// multiple editor instances to one long-lived process during development.
func ListenAndServeTCP(addr string) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("patchexpr language server: could not bind to %s: %v", addr, err)
	}
	defer listener.Close()

	log.Println("patchexpr language server: listening for TCP connections on", addr)

	connectionCount := 0
	for {
		conn, err := listener.Accept()
		if err != nil {
			log.Fatalf("patchexpr language server: accept failed: %v", err)
		}
		connectionCount++
		connectionID := connectionCount
		log.Printf("patchexpr language server: connection #%d opened\n", connectionID)

		h := handler{}
		rpcConn := jsonrpc2.NewConn(context.Background(), jsonrpc2.NewBufferedStream(conn, jsonrpc2.VSCodeObjectCodec{}), h)
		go func() {
			<-rpcConn.DisconnectNotify()
			log.Printf("patchexpr language server: connection #%d closed\n", connectionID)
		}()
	}
}

type handler struct{}

func (h handler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	util.LogF("patchexpr language server: received request: %s", req.Method)
	switch req.Method {
	case "textDocument/didOpen":
		documentOpenNotification(conn, req)
	case "textDocument/didClose":
		documentCloseNotification(conn, req)
	case "textDocument/didChange":
		documentChangeNotification(conn, req)
	case "textDocument/diagnostic":
		documentDiagnostics(conn, req)
	case "textDocument/hover":
		hoverRequest(conn, req)
	case "initialize":
		handleInitialize(conn, req)
	case "shutdown":
		conn.Reply(context.Background(), req.ID, nil)
		conn.Close()
	case "exit":
		conn.Reply(context.Background(), req.ID, nil)
		conn.Close()
	}
}

func handleInitialize(conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	params := InitializeParams{}
	if err := json.Unmarshal(*req.Params, &params); err != nil {
		replyInvalidParams(conn, req)
		return
	}

	result := InitializeResult{}
	result.Capabilities.TextDocumentSync = 1
	result.Capabilities.HoverProvider = true
	result.Capabilities.DiagnosticOptions = DiagnosticOptions{InterFileDependencies: false, WorkspaceDiagnostics: false}
	conn.Reply(context.Background(), req.ID, result)
}
