package patchserver

import (
	"testing"

	"github.com/dcbailey/patchexpr/expr"
)

func TestEvaluateSimpleExpression(t *testing.T) {
	srv := New(expr.Collaborators{})
	resp := srv.evaluate(EvalRequest{Expression: "1 + 2 * 3"})

	if !resp.OK {
		t.Fatalf("expected OK response, got error %q", resp.Error)
	}
	if resp.Value != 7 {
		t.Errorf("got %d, want 7", resp.Value)
	}
}

func TestEvaluateReportsParseError(t *testing.T) {
	srv := New(expr.Collaborators{})
	resp := srv.evaluate(EvalRequest{Expression: "1 +"})

	if resp.OK {
		t.Errorf("expected OK=false for a truncated expression")
	}
	if resp.Error == "" {
		t.Errorf("expected a non-empty error message")
	}
}

func TestEvaluateUsesSuppliedRegisters(t *testing.T) {
	srv := New(expr.Collaborators{})
	resp := srv.evaluate(EvalRequest{
		Expression: "eax",
		Registers:  &expr.RegisterBank{EAX: 0x2A},
	})

	if !resp.OK {
		t.Fatalf("expected OK response, got error %q", resp.Error)
	}
	if resp.Value != 0x2A {
		t.Errorf("got %#x, want 0x2A", resp.Value)
	}
}

func TestEvaluateUsesRelSource(t *testing.T) {
	srv := New(expr.Collaborators{})
	resp := srv.evaluate(EvalRequest{Expression: "[0x1010]", RelSource: 0x1000})

	if !resp.OK {
		t.Fatalf("expected OK response, got error %q", resp.Error)
	}
	if resp.Value != 0xC {
		t.Errorf("got %#x, want 0xC", resp.Value)
	}
}

func TestEvaluateUsesCollaborators(t *testing.T) {
	srv := New(expr.Collaborators{
		OptionLookup: func(name string) (expr.Value, bool) {
			if name == "width" {
				return expr.UintValue(expr.TagDWord, 640), true
			}
			return expr.Value{}, false
		},
	})
	resp := srv.evaluate(EvalRequest{Expression: "<option:width>"})

	if !resp.OK {
		t.Fatalf("expected OK response, got error %q", resp.Error)
	}
	if resp.Value != 640 {
		t.Errorf("got %d, want 640", resp.Value)
	}
}
