package expr

import (
	"strconv"
	"strings"
)

func closingBracket(open byte) byte {
	switch open {
	case '<':
		return '>'
	case '[':
		return ']'
	case '{':
		return '}'
	}
	return 0
}

// findMatchingEnd scans from start for the close byte, tracking nested
// depth of the same open/close pair so a nested patch-value or grouping of
// the same bracket character is skipped rather than mistaken for the outer
// closer.
func findMatchingEnd(s string, start int, open, close byte) (int, bool) {
	depth := 1
	for i := start; i < len(s); i++ {
		c := s[i]
		if c == open && open != close {
			depth++
		} else if c == close {
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// GetPatchValue parses exactly one bracketed patch-value at s[pos] — one of
// '<...>' (absolute), '[...]' (relative), '{...}' (indirect) — per §4.5.
func GetPatchValue(s string, pos int, ctx *Context, diags *Diagnostics) (Value, int, error) {
	if pos >= len(s) {
		return Value{}, pos, Errors.UnmatchedPatchValueBrackets(pos)
	}
	open := s[pos]
	close := closingBracket(open)
	if close == 0 {
		return Value{}, pos, Errors.UnmatchedPatchValueBrackets(pos)
	}

	bodyStart := pos + 1
	end, ok := findMatchingEnd(s, bodyStart, open, close)
	if !ok {
		return Value{}, pos, Errors.UnmatchedPatchValueBrackets(pos)
	}
	body := s[bodyStart:end]

	defaultTag := TagPointer
	if open == '[' {
		defaultTag = TagDWord
	}

	val, err := evalPatchBody(body, bodyStart, ctx, diags, defaultTag)
	if err != nil {
		return Value{}, pos, err
	}

	if open == '[' && val.Tag != TagCode && val.Tag != TagString {
		val = UintValue(val.Tag, val.Uint()-(ctx.RelSource+4))
	}

	return val, end + 1, nil
}

func evalPatchBody(body string, bodyPos int, ctx *Context, diags *Diagnostics, defaultTag ValueTag) (Value, error) {
	lower := strings.ToLower(body)

	switch {
	case strings.HasPrefix(lower, "codecave:"):
		rest := body[len("codecave:"):]
		name, offsetExpr := splitOffset(rest)
		var addr uint64
		found := false
		if ctx.Collaborators.CodecaveLookup != nil {
			addr, found = ctx.Collaborators.CodecaveLookup(name)
		}
		if !found {
			diags.warnCodecaveNotFound(name)
		}
		offset, err := parseCodecaveOffset(offsetExpr, bodyPos+len("codecave:")+len(name)+1, ctx, diags)
		if err != nil {
			return Value{}, err
		}
		return UintValue(defaultTag, addr+offset), nil

	case strings.HasPrefix(lower, "option:"):
		name := body[len("option:"):]
		if ctx.Collaborators.OptionLookup != nil {
			if v, ok := ctx.Collaborators.OptionLookup(name); ok {
				return v, nil
			}
		}
		diags.warnOptionNotFound(name)
		return UintValue(defaultTag, 0), nil

	case strings.HasPrefix(lower, "patch:"):
		name := body[len("patch:"):]
		loaded := false
		if ctx.Collaborators.PatchLoadedLookup != nil {
			loaded = ctx.Collaborators.PatchLoadedLookup(name)
		}
		if loaded {
			return UintValue(TagDWord, 1), nil
		}
		return UintValue(TagDWord, 0), nil

	case strings.HasPrefix(lower, "cpuid:"):
		name := body[len("cpuid:"):]
		supported, known := true, false
		if ctx.Collaborators.CPUFeatureLookup != nil {
			supported, known = ctx.Collaborators.CPUFeatureLookup(name)
		}
		if !known {
			diags.warnUnknownFeature(name)
			supported = true
		}
		return BoolValue(supported), nil

	case strings.HasPrefix(lower, "nop:"):
		countExpr := body[len("nop:"):]
		countVal, err := evalSubExpr(countExpr, bodyPos+len("nop:"), ctx, diags)
		if err != nil {
			return Value{}, err
		}
		vendorAMD := false
		if ctx.Collaborators.CPUFeatureLookup != nil {
			if amd, known := ctx.Collaborators.CPUFeatureLookup("amd"); known {
				vendorAMD = amd
			}
		}
		return buildMultiByteNop(int(countVal.Int()), vendorAMD), nil

	case strings.HasPrefix(lower, "int3:"):
		countExpr := body[len("int3:"):]
		countVal, err := evalSubExpr(countExpr, bodyPos+len("int3:"), ctx, diags)
		if err != nil {
			return Value{}, err
		}
		return buildInt3(int(countVal.Int())), nil

	default:
		name := strings.TrimSpace(body)
		if ctx.Collaborators.BreakpointLookup != nil {
			if addr, ok := ctx.Collaborators.BreakpointLookup(name); ok {
				return UintValue(defaultTag, addr), nil
			}
		}
		v, err := evalSubExpr(body, bodyPos, ctx, diags)
		if err != nil {
			return Value{}, err
		}
		if !v.Tag.isFloat() && v.Tag != TagCode && v.Tag != TagString {
			v = v.withTag(defaultTag)
		}
		return v, nil
	}
}

func splitOffset(s string) (name string, offset string) {
	if idx := strings.IndexByte(s, '+'); idx >= 0 {
		return s[:idx], s[idx+1:]
	}
	return s, ""
}

// parseCodecaveOffset implements the offset grammar from SPEC_FULL.md §12:
// try a bare hex literal first, and only on failure fall back to a full
// sub-expression.
func parseCodecaveOffset(s string, basePos int, ctx *Context, diags *Diagnostics) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	if v, err := strconv.ParseUint(s, 16, 64); err == nil {
		return v, nil
	}
	val, err := evalSubExpr(s, basePos, ctx, diags)
	if err != nil {
		return 0, err
	}
	return val.Uint(), nil
}

// evalSubExpr evaluates an entire bracket body (or sub-slice of one) as a
// self-contained expression with no outer sentinel.
func evalSubExpr(body string, basePos int, ctx *Context, diags *Diagnostics) (Value, error) {
	val, _, err := parseExpr(body, 0, 0, 0, ctx, diags)
	if err != nil {
		if ee, ok := err.(*EvalError); ok {
			return Value{}, &EvalError{Kind: ee.Kind, Pos: ee.Pos + basePos, Detail: ee.Detail, Wrapped: ee.Wrapped}
		}
		return Value{}, err
	}
	return val, nil
}
