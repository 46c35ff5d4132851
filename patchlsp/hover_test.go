package patchlsp

import (
	"context"
	"encoding/json"
	"net"
	"testing"

	"github.com/sourcegraph/jsonrpc2"
)

// noopHandler answers nothing; the client side of the pipe never receives a
// request in this test, it only issues one.
type noopHandler struct{}

func (noopHandler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {}

// TestHoverRequestOverRPC drives hoverRequest through the real jsonrpc2
// dispatch path (handler.Handle -> hoverRequest -> conn.Reply) over an
// in-memory pipe, rather than calling scanExprFields directly.
func TestHoverRequestOverRPC(t *testing.T) {
	const uri = DocumentUri("file:///test.patch")
	documentMap[string(uri)] = TextDocumentItem{
		URI:     uri,
		Version: 1,
		Text:    "width = 640\nheight = 480\n",
	}
	defer delete(documentMap, string(uri))

	serverSide, clientSide := net.Pipe()

	serverConn := jsonrpc2.NewConn(context.Background(), jsonrpc2.NewBufferedStream(serverSide, jsonrpc2.VSCodeObjectCodec{}), handler{})
	defer serverConn.Close()
	clientConn := jsonrpc2.NewConn(context.Background(), jsonrpc2.NewBufferedStream(clientSide, jsonrpc2.VSCodeObjectCodec{}), noopHandler{})
	defer clientConn.Close()

	var hover Hover
	err := clientConn.Call(context.Background(), "textDocument/hover", TextDocumentPositionParams{
		TextDocument: TextDocumentIdentifier{URI: uri},
		Position:     TextPosition{Line: 0, Char: 10},
	}, &hover)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}

	if hover.Contents.Value == "" {
		t.Errorf("expected non-empty hover contents for an expression under the cursor")
	}
}

func TestHoverRequestOutsideAnyFieldRepliesNil(t *testing.T) {
	const uri = DocumentUri("file:///empty.patch")
	documentMap[string(uri)] = TextDocumentItem{URI: uri, Version: 1, Text: "no assignments here\n"}
	defer delete(documentMap, string(uri))

	serverSide, clientSide := net.Pipe()

	serverConn := jsonrpc2.NewConn(context.Background(), jsonrpc2.NewBufferedStream(serverSide, jsonrpc2.VSCodeObjectCodec{}), handler{})
	defer serverConn.Close()
	clientConn := jsonrpc2.NewConn(context.Background(), jsonrpc2.NewBufferedStream(clientSide, jsonrpc2.VSCodeObjectCodec{}), noopHandler{})
	defer clientConn.Close()

	var raw json.RawMessage
	err := clientConn.Call(context.Background(), "textDocument/hover", TextDocumentPositionParams{
		TextDocument: TextDocumentIdentifier{URI: uri},
		Position:     TextPosition{Line: 0, Char: 3},
	}, &raw)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if string(raw) != "null" {
		t.Errorf("got %s, want null when no expression field is under the cursor", raw)
	}
}

func TestTextDocumentPositionParamsRoundTripsJSON(t *testing.T) {
	params := TextDocumentPositionParams{
		TextDocument: TextDocumentIdentifier{URI: "file:///a.patch"},
		Position:     TextPosition{Line: 3, Char: 7},
	}
	b, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded TextDocumentPositionParams
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Position.Line != 3 || decoded.Position.Char != 7 {
		t.Errorf("got %+v, want Line=3 Char=7", decoded.Position)
	}
}
