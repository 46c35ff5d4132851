package patchlsp

import "testing"

func TestScanExprFieldsParsesAssignments(t *testing.T) {
	text := "width = 640\nheight=480\nnot an assignment\n"
	fields := scanExprFields(text)

	if len(fields) != 2 {
		t.Fatalf("got %d fields, want 2: %+v", len(fields), fields)
	}
	if fields[0].expression != "640" {
		t.Errorf("got %q, want %q", fields[0].expression, "640")
	}
	if fields[1].expression != "480" {
		t.Errorf("got %q, want %q", fields[1].expression, "480")
	}
}

func TestScanExprFieldsSkipsBlankExpression(t *testing.T) {
	fields := scanExprFields("empty = \n")
	if len(fields) != 0 {
		t.Errorf("got %d fields, want 0 for a blank right-hand side", len(fields))
	}
}

func TestScanExprFieldsSkipsLinesWithoutEquals(t *testing.T) {
	fields := scanExprFields("just some text\nanother line")
	if len(fields) != 0 {
		t.Errorf("got %d fields, want 0", len(fields))
	}
}

func TestDiagnosticsForDocumentFindsBadExpression(t *testing.T) {
	text := "good = 1 + 2\nbad = 1 +\n"
	diags := diagnosticsForDocument(text)

	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %+v", len(diags), diags)
	}
	if diags[0].Range.Start.Line != 1 {
		t.Errorf("got line %d, want 1", diags[0].Range.Start.Line)
	}
	if diags[0].Severity != SeverityError {
		t.Errorf("got severity %v, want SeverityError", diags[0].Severity)
	}
}

func TestDiagnosticsForDocumentCleanFileHasNone(t *testing.T) {
	text := "a = 1 + 1\nb = 2 * 3\n"
	diags := diagnosticsForDocument(text)
	if len(diags) != 0 {
		t.Errorf("got %d diagnostics, want 0: %+v", len(diags), diags)
	}
}
