package patchlsp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/dcbailey/patchexpr/expr"
)

// hoverRequest re-evaluates the expression on the hovered line and shows
// its resolved value and tag, the same role assembler.EvaluateHover played
// for instruction operands in the assembly language server.
func hoverRequest(conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	params := TextDocumentPositionParams{}
	if err := json.Unmarshal(*req.Params, &params); err != nil {
		replyInvalidParams(conn, req)
		return
	}

	doc := documentMap[string(params.TextDocument.URI)]
	lines := strings.Split(doc.Text, "\n")
	if params.Position.Line >= len(lines) {
		conn.Reply(context.Background(), req.ID, nil)
		return
	}

	var match *exprField
	for _, f := range scanExprFields(lines[params.Position.Line]) {
		if f.line != 0 {
			continue
		}
		if params.Position.Char >= f.exprStart {
			fCopy := f
			fCopy.line = params.Position.Line
			match = &fCopy
		}
	}
	if match == nil {
		conn.Reply(context.Background(), req.ID, nil)
		return
	}

	ctx := &expr.Context{Regs: &expr.RegisterBank{}}
	diags := expr.NewDiagnostics()
	_, val, err := expr.Evaluate(match.expression, 0, ctx, diags)
	if err != nil {
		conn.Reply(context.Background(), req.ID, nil)
		return
	}

	conn.Reply(context.Background(), req.ID, Hover{
		Contents: MarkupContent{
			Kind:  "markdown",
			Value: fmt.Sprintf("`%s` = `%d` (%s)", match.expression, val.Int(), val.Tag.String()),
		},
	})
}
