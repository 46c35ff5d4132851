package expr

import "math"

// consumeOperand parses a single operand starting at pos: an optional
// pointer-size keyword, an optional unary prefix chain, then one of a
// register, a numeric literal, a parenthesized cast-or-subexpression, a
// bracketed register-dereference-or-relative-patch-value, or a '<'/'{'
// patch-value; finally any postfix ++/--.
func consumeOperand(s string, pos int, ctx *Context, diags *Diagnostics) (Value, int, error) {
	pos = skipWhitespace(s, pos)

	pendingTag := TagDefault
	if tag, next, ok := matchPointerSizeKeyword(s, pos); ok {
		pendingTag = tag
		pos = next
	}

	if pos >= len(s) {
		return Value{}, pos, Errors.Generic("expected operand", pos, nil)
	}

	c := s[pos]

	switch {
	case c == '!':
		if pos+1 < len(s) && s[pos+1] == '!' {
			v, next, err := consumeOperand(s, pos+2, ctx, diags)
			if err != nil {
				return Value{}, next, err
			}
			return finishOperand(s, BoolValue(!(!v.Bool())), next, ctx, diags)
		}
		v, next, err := consumeOperand(s, pos+1, ctx, diags)
		if err != nil {
			return Value{}, next, err
		}
		return finishOperand(s, BoolValue(!v.Bool()), next, ctx, diags)

	case c == '~':
		if pos+1 < len(s) && s[pos+1] == '~' {
			v, next, err := consumeOperand(s, pos+2, ctx, diags)
			if err != nil {
				return Value{}, next, err
			}
			return finishOperand(s, UintValue(v.Tag, ^(^v.Uint())), next, ctx, diags)
		}
		v, next, err := consumeOperand(s, pos+1, ctx, diags)
		if err != nil {
			return Value{}, next, err
		}
		return finishOperand(s, UintValue(v.Tag, ^v.Uint()), next, ctx, diags)

	case c == '+':
		if pos+1 < len(s) && s[pos+1] == '+' {
			diags.warnIncDecNoOp(pos, "++")
			v, next, err := consumeOperand(s, pos+2, ctx, diags)
			if err != nil {
				return Value{}, next, err
			}
			return finishOperand(s, incDec(v, 1), next, ctx, diags)
		}
		v, next, err := consumeOperand(s, pos+1, ctx, diags)
		if err != nil {
			return Value{}, next, err
		}
		return finishOperand(s, v, next, ctx, diags)

	case c == '-':
		if pos+1 < len(s) && s[pos+1] == '-' {
			diags.warnIncDecNoOp(pos, "--")
			v, next, err := consumeOperand(s, pos+2, ctx, diags)
			if err != nil {
				return Value{}, next, err
			}
			return finishOperand(s, incDec(v, -1), next, ctx, diags)
		}
		v, next, err := consumeOperand(s, pos+1, ctx, diags)
		if err != nil {
			return Value{}, next, err
		}
		return finishOperand(s, negate(v), next, ctx, diags)

	case c == '*':
		v, next, err := consumeOperand(s, pos+1, ctx, diags)
		if err != nil {
			return Value{}, next, err
		}
		return finishOperand(s, dereference(v, pendingTag, ctx, diags, pos), next, ctx, diags)

	case c == '&':
		v, next, err := consumeOperand(s, pos+1, ctx, diags)
		if err != nil {
			return Value{}, next, err
		}
		return finishOperand(s, v.withTag(TagPointer), next, ctx, diags)

	case c == '(':
		if tag, next, ok := matchCastType(s, pos+1); ok {
			next = skipWhitespace(s, next)
			if next < len(s) && s[next] == ')' {
				v, after, err := consumeOperand(s, next+1, ctx, diags)
				if err != nil {
					return Value{}, after, err
				}
				return finishOperand(s, applyCast(v, tag), after, ctx, diags)
			}
		}
		v, next, err := parseExpr(s, pos+1, ')', 0, ctx, diags)
		if err != nil {
			return Value{}, next, err
		}
		next = skipWhitespace(s, next)
		if next >= len(s) || s[next] != ')' {
			return Value{}, next, Errors.UnmatchedGroupingBrackets(pos)
		}
		return finishOperand(s, v, next+1, ctx, diags)

	case c == '[':
		// A bare register name in brackets is a sized dereference; anything
		// else is a relative patch-value (§4.5). Register lookup only
		// applies with a register bank present (spec.md:84) — with none,
		// fall straight through to the relative patch-value parse.
		if ctx.Regs != nil {
			if _, _, regNext, ok := resolveRegister(s, pos+1, ctx.Regs.Is64Bit); ok {
				afterReg := skipWhitespace(s, regNext)
				if afterReg < len(s) && s[afterReg] == ']' {
					regVal, _, err := consumeRegisterOperand(s, pos+1, ctx, diags)
					if err != nil {
						return Value{}, afterReg, err
					}
					return finishOperand(s, dereference(regVal, pendingTag, ctx, diags, pos), afterReg+1, ctx, diags)
				}
			}
		}
		v, next, err := GetPatchValue(s, pos, ctx, diags)
		if err != nil {
			return Value{}, next, err
		}
		return finishOperand(s, v, next, ctx, diags)

	case c == '<' || c == '{':
		v, next, err := GetPatchValue(s, pos, ctx, diags)
		if err != nil {
			return Value{}, next, err
		}
		return finishOperand(s, v, next, ctx, diags)
	}

	// Register-mnemonic recognition only applies when a register bank was
	// supplied (spec.md:84) — otherwise fall through to "unknown character"
	// rather than resolving a register name against a nil bank.
	if ctx.Regs != nil {
		if ord, width, next, ok := resolveRegister(s, pos, ctx.Regs.Is64Bit); ok {
			raw := readRegister(ctx.Regs, ord, width)
			return finishOperand(s, valueFromRawBits(TagDWord, raw), next, ctx, diags)
		}
	}

	if isDigit(c) {
		v, next, err := parseNumericLiteral(s, pos)
		if err != nil {
			return Value{}, next, err
		}
		if pendingTag != TagDefault {
			v = v.withTag(pendingTag)
		}
		return finishOperand(s, v, next, ctx, diags)
	}

	return Value{}, pos, Errors.UnknownCharacter(c, pos)
}

func consumeRegisterOperand(s string, pos int, ctx *Context, diags *Diagnostics) (Value, int, error) {
	ord, width, next, ok := resolveRegister(s, pos, ctx.Regs != nil && ctx.Regs.Is64Bit)
	if !ok {
		return Value{}, pos, Errors.UnknownCharacter(s[pos], pos)
	}
	raw := readRegister(ctx.Regs, ord, width)
	return valueFromRawBits(TagDWord, raw), next, nil
}

// finishOperand applies a trailing postfix ++/-- to an already-parsed
// operand. It warns once and returns the base value unchanged; unlike the
// prefix forms, which return the incremented/decremented value, the postfix
// forms do not adjust the produced value (§7: "mutation of a non-lvalue ...
// diagnosed with a warning, value unchanged").
func finishOperand(s string, v Value, pos int, ctx *Context, diags *Diagnostics) (Value, int, error) {
	if pos+1 < len(s) {
		if s[pos] == '+' && s[pos+1] == '+' {
			diags.warnIncDecNoOp(pos, "++")
			return v, pos + 2, nil
		}
		if s[pos] == '-' && s[pos+1] == '-' {
			diags.warnIncDecNoOp(pos, "--")
			return v, pos + 2, nil
		}
	}
	return v, pos, nil
}

func incDec(v Value, delta int64) Value {
	if v.Tag.isFloat() {
		return FloatValue(v.Tag, v.Float()+float64(delta))
	}
	return IntValue(v.Tag, v.Int()+delta)
}

func negate(v Value) Value {
	if v.Tag.isFloat() {
		return FloatValue(v.Tag, -v.Float())
	}
	return IntValue(v.Tag, -v.Int())
}

// dereference loads memory at addr through ctx.Collaborators.Memory. A null
// address warns and returns zero; with no memory collaborator wired, or an
// address the collaborator cannot read, it returns zero without a warning
// rather than faulting — this evaluator never runs in the same address
// space as the patch target.
func dereference(addr Value, pendingTag ValueTag, ctx *Context, diags *Diagnostics, pos int) Value {
	tag := pendingTag
	if tag == TagDefault {
		tag = TagDWord
	}
	if addr.Uint() == 0 {
		diags.warnNullDeref(pos)
		return UintValue(tag, 0)
	}
	if ctx.Collaborators.Memory == nil {
		return UintValue(tag, 0)
	}
	raw, ok := ctx.Collaborators.Memory.ReadSized(addr.Uint(), tag.widthBits(), tag.isFloat())
	if !ok {
		return UintValue(tag, 0)
	}
	return valueFromRawBits(tag, raw)
}

func valueFromRawBits(tag ValueTag, raw uint64) Value {
	if tag.isFloat() {
		if tag == TagFloat {
			return FloatValue(tag, float64(math.Float32frombits(uint32(raw))))
		}
		return FloatValue(tag, math.Float64frombits(raw))
	}
	if tag.isSigned() {
		return IntValue(tag, int64(signExtend(raw, tag.widthBits())))
	}
	return UintValue(tag, raw)
}
