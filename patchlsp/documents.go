package patchlsp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/dcbailey/patchexpr/expr"
)

// documentMap mirrors the assembly language server's global open-document
// table (languageServer/documents.go) — one process, one set of open
// editors, no per-connection isolation needed for a single-user tool.
var documentMap = make(map[string]TextDocumentItem)

// exprField is one `name = expression` assignment found on a line of a
// patch definition file — the grammar this server diagnoses against.
type exprField struct {
	line       int
	exprStart  int
	expression string
}

func scanExprFields(text string) []exprField {
	var fields []exprField
	for lineNo, line := range strings.Split(text, "\n") {
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			continue
		}
		trimmedPrefix := line[:eq]
		if strings.TrimSpace(trimmedPrefix) == "" {
			continue
		}
		exprStart := eq + 1
		for exprStart < len(line) && (line[exprStart] == ' ' || line[exprStart] == '\t') {
			exprStart++
		}
		expression := strings.TrimRight(line[exprStart:], " \t\r")
		if expression == "" {
			continue
		}
		fields = append(fields, exprField{line: lineNo, exprStart: exprStart, expression: expression})
	}
	return fields
}

func diagnosticsForDocument(text string) []Diagnostic {
	diags := make([]Diagnostic, 0)
	ctx := &expr.Context{Regs: &expr.RegisterBank{}}

	for _, f := range scanExprFields(text) {
		d := expr.NewDiagnostics()
		_, _, err := expr.Evaluate(f.expression, 0, ctx, d)
		if err == nil {
			continue
		}
		evalErr, ok := err.(*expr.EvalError)
		col := f.exprStart
		if ok {
			col += evalErr.Pos
		}
		diags = append(diags, Diagnostic{
			Range: TextRange{
				Start: TextPosition{Line: f.line, Char: col},
				End:   TextPosition{Line: f.line, Char: col + 1},
			},
			Message:  err.Error(),
			Source:   "patchexpr",
			Severity: SeverityError,
		})
	}
	return diags
}

func publishDiagnostics(conn *jsonrpc2.Conn, uri DocumentUri, version int) {
	doc := documentMap[string(uri)]
	conn.Notify(context.Background(), "textDocument/publishDiagnostics", PublishDiagnosticsParams{
		URI:         uri,
		Version:     version,
		Diagnostics: diagnosticsForDocument(doc.Text),
	})
}

func documentOpenNotification(conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	params := DidOpenTextDocumentParams{}
	if err := json.Unmarshal(*req.Params, &params); err != nil {
		replyInvalidParams(conn, req)
		return
	}
	documentMap[string(params.TextDocument.URI)] = params.TextDocument
	publishDiagnostics(conn, params.TextDocument.URI, params.TextDocument.Version)
}

func documentCloseNotification(conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	params := DidCloseTextDocumentParams{}
	if err := json.Unmarshal(*req.Params, &params); err != nil {
		replyInvalidParams(conn, req)
		return
	}
	delete(documentMap, string(params.TextDocument.URI))
}

func documentChangeNotification(conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	params := DidChangeTextDocumentParams{}
	if err := json.Unmarshal(*req.Params, &params); err != nil {
		replyInvalidParams(conn, req)
		return
	}

	doc := documentMap[string(params.TextDocument.URI)]
	if len(params.ContentChanges) > 0 {
		doc.Text = params.ContentChanges[0].Text
	}
	doc.Version = params.TextDocument.Version
	documentMap[string(params.TextDocument.URI)] = doc

	publishDiagnostics(conn, params.TextDocument.URI, doc.Version)
}

func documentDiagnostics(conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	params := DocumentDiagnosticsParams{}
	if err := json.Unmarshal(*req.Params, &params); err != nil {
		replyInvalidParams(conn, req)
		return
	}

	doc := documentMap[string(params.TextDocument.URI)]
	conn.Reply(context.Background(), req.ID, DocumentDiagnosticsReport{
		Kind:  "full",
		Items: diagnosticsForDocument(doc.Text),
	})
}

func replyInvalidParams(conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	rpcErr := jsonrpc2.Error{}
	rpcErr.SetError("invalid parameters")
	conn.ReplyWithError(context.Background(), req.ID, &rpcErr)
}
