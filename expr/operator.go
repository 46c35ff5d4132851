package expr

import (
	"math"
	"math/bits"
)

// resultTag picks the tag a binary operator's result is reported under:
// any floating tag beats an integer tag (long double over double over
// float), otherwise the wider of the two integer tags wins, mirroring
// usual-arithmetic-conversion rules closely enough for this grammar's needs.
func resultTag(a, b Value) ValueTag {
	if a.Tag.isFloat() || b.Tag.isFloat() {
		if a.Tag == TagLongDouble || b.Tag == TagLongDouble {
			return TagLongDouble
		}
		if a.Tag == TagDouble || b.Tag == TagDouble {
			return TagDouble
		}
		return TagFloat
	}
	if a.Tag.widthBits() >= b.Tag.widthBits() {
		if a.Tag == TagNone || a.Tag == TagUnknown || a.Tag == TagDefault {
			return TagQWord
		}
		return a.Tag
	}
	return b.Tag
}

// applyOperator evaluates v op a, where v is the left (already-parsed)
// operand and a is the right. Assignment opcodes fold to their base
// operation's produced value (§4.4: "behave identically to their base
// operation") without touching any external store — the evaluator never
// writes back into the register bank or an option, since there is nothing
// in this model's read-only collaborators to write into.
func applyOperator(v, a Value, op Opcode) (Value, error) {
	if isAssignOp(op) {
		if op == OpAssign {
			return a, nil
		}
		return applyOperator(v, a, baseOpOfAssign(op))
	}

	switch op {
	case OpPow:
		return powValue(v, a), nil
	case OpMul:
		return numericBinary(v, a, func(x, y float64) float64 { return x * y }, func(x, y int64) int64 { return x * y }, func(x, y uint64) uint64 { return x * y }), nil
	case OpDiv:
		return divValue(v, a), nil
	case OpMod:
		return modValue(v, a), nil
	case OpAdd:
		return numericBinary(v, a, func(x, y float64) float64 { return x + y }, func(x, y int64) int64 { return x + y }, func(x, y uint64) uint64 { return x + y }), nil
	case OpSub:
		return numericBinary(v, a, func(x, y float64) float64 { return x - y }, func(x, y int64) int64 { return x - y }, func(x, y uint64) uint64 { return x - y }), nil

	case OpShl:
		return shiftValue(v, a, false, false), nil
	case OpShr:
		return shiftValue(v, a, true, false), nil
	case OpShlLogic:
		return shiftValue(v, a, false, true), nil
	case OpShrLogic:
		return shiftValue(v, a, true, true), nil
	case OpRol:
		return rotateValue(v, a, true), nil
	case OpRor:
		return rotateValue(v, a, false), nil

	case OpLt:
		return BoolValue(compareLess(v, a)), nil
	case OpGe:
		return BoolValue(!compareLess(v, a)), nil
	case OpGt:
		return BoolValue(compareLess(a, v)), nil
	case OpLe:
		return BoolValue(!compareLess(a, v)), nil
	case OpEq:
		return BoolValue(compareEqual(v, a)), nil
	case OpNe:
		return BoolValue(!compareEqual(v, a)), nil

	case OpSpaceship:
		var r int64
		switch {
		case compareLess(v, a):
			r = -1
		case compareLess(a, v):
			r = 1
		default:
			r = 0
		}
		return IntValue(TagQWord, r), nil

	case OpAnd:
		return UintValue(resultTag(v, a), v.Uint()&a.Uint()), nil
	case OpNand:
		return UintValue(resultTag(v, a), ^(v.Uint() & a.Uint())), nil
	case OpXor:
		return UintValue(resultTag(v, a), v.Uint()^a.Uint()), nil
	case OpXnor:
		return UintValue(resultTag(v, a), ^(v.Uint() ^ a.Uint())), nil
	case OpOr:
		return UintValue(resultTag(v, a), v.Uint()|a.Uint()), nil
	case OpNor:
		return UintValue(resultTag(v, a), ^(v.Uint() | a.Uint())), nil

	case OpLogAnd:
		return BoolValue(v.Bool() && a.Bool()), nil
	case OpLogNand:
		return BoolValue(!(v.Bool() && a.Bool())), nil
	case OpLogXor:
		return BoolValue(v.Bool() != a.Bool()), nil
	case OpLogXnor:
		return BoolValue(v.Bool() == a.Bool()), nil
	case OpLogOr:
		return BoolValue(v.Bool() || a.Bool()), nil
	case OpLogNor:
		return BoolValue(!(v.Bool() || a.Bool())), nil

	case OpComma, OpSemi:
		return a, nil
	}

	return Value{}, Errors.Generic("unsupported operator", 0, nil)
}

func divValue(v, a Value) Value {
	if v.Tag.isFloat() || a.Tag.isFloat() {
		return FloatValue(resultTag(v, a), v.Float()/a.Float())
	}
	if a.Uint() == 0 {
		return UintValue(resultTag(v, a), ^uint64(0))
	}
	if v.Tag.isSigned() && a.Tag.isSigned() {
		return IntValue(resultTag(v, a), v.Int()/a.Int())
	}
	return UintValue(resultTag(v, a), v.Uint()/a.Uint())
}

// modValue implements the §9 Open Question decision: mod on a float operand
// has no defined result and yields TagNone rather than a fabricated value.
func modValue(v, a Value) Value {
	if v.Tag.isFloat() || a.Tag.isFloat() {
		return Value{Tag: TagNone}
	}
	if a.Uint() == 0 {
		return UintValue(resultTag(v, a), ^uint64(0))
	}
	if v.Tag.isSigned() && a.Tag.isSigned() {
		return IntValue(resultTag(v, a), v.Int()%a.Int())
	}
	return UintValue(resultTag(v, a), v.Uint()%a.Uint())
}

func numericBinary(v, a Value, ff func(x, y float64) float64, fi func(x, y int64) int64, fu func(x, y uint64) uint64) Value {
	tag := resultTag(v, a)
	if tag.isFloat() {
		return FloatValue(tag, ff(v.Float(), a.Float()))
	}
	if tag.isSigned() {
		return IntValue(tag, fi(v.Int(), a.Int()))
	}
	return UintValue(tag, fu(v.Uint(), a.Uint()))
}

func compareLess(v, a Value) bool {
	if v.Tag.isFloat() || a.Tag.isFloat() {
		return v.Float() < a.Float()
	}
	if v.Tag.isSigned() && a.Tag.isSigned() {
		return v.Int() < a.Int()
	}
	return v.Uint() < a.Uint()
}

func compareEqual(v, a Value) bool {
	if v.Tag.isFloat() || a.Tag.isFloat() {
		return v.Float() == a.Float()
	}
	return v.Uint() == a.Uint()
}

// shiftValue implements the arithmetic (<</>>, sign-preserving on the right
// shift of a signed tag) vs. logical (<<</>>>, always unsigned) split from
// §4.1/§4.4.
func shiftValue(v, a Value, isRight, forceLogical bool) Value {
	tag := v.Tag
	width := tag.widthBits()
	s := uint(a.Uint())
	if width < 64 {
		s %= 64
	}
	if s >= 64 {
		if isRight && tag.isSigned() && !forceLogical {
			if v.Int() < 0 {
				return IntValue(tag, -1)
			}
			return IntValue(tag, 0)
		}
		return UintValue(tag, 0)
	}
	if s == 0 {
		return v
	}
	if isRight {
		if tag.isSigned() && !forceLogical {
			return IntValue(tag, v.Int()>>s)
		}
		return UintValue(tag, v.Uint()>>s)
	}
	raw := v.Uint() << s
	if width < 64 {
		raw &= (uint64(1)<<uint(width) - 1)
		if tag.isSigned() {
			raw = signExtend(raw, width)
		}
	}
	return UintValue(tag, raw)
}

// rotateValue implements r<</r>>. math/bits.RotateLeft64 covers the full
// 64-bit width directly; sub-64-bit widths need a masked rotate since
// RotateLeft64 would rotate bits into positions above the tag's width.
func rotateValue(v, a Value, left bool) Value {
	tag := v.Tag
	width := tag.widthBits()
	s := int(a.Uint() % uint64(width))
	if !left {
		s = width - s
		if s == width {
			s = 0
		}
	}
	if width >= 64 {
		return UintValue(tag, bits.RotateLeft64(v.Uint(), s))
	}
	mask := uint64(1)<<uint(width) - 1
	x := v.Uint() & mask
	rotated := ((x << uint(s)) | (x >> uint(width-s))) & mask
	if s == 0 {
		rotated = x
	}
	return UintValue(tag, rotated)
}

// powValue implements integer power-by-squaring with unsigned overflow
// saturating to SIZE_MAX, and a real math.Pow for any float operand.
func powValue(v, a Value) Value {
	if v.Tag.isFloat() || a.Tag.isFloat() {
		return FloatValue(resultTag(v, a), math.Pow(v.Float(), a.Float()))
	}
	tag := resultTag(v, a)
	base := v.Uint()
	exp := a.Uint()
	var result uint64 = 1
	overflow := false
	for exp > 0 {
		if exp&1 == 1 {
			hi, lo := bits.Mul64(result, base)
			if hi != 0 {
				overflow = true
			}
			result = lo
		}
		exp >>= 1
		if exp > 0 {
			hi, lo := bits.Mul64(base, base)
			if hi != 0 {
				overflow = true
			}
			base = lo
		}
	}
	if overflow {
		return UintValue(tag, ^uint64(0))
	}
	return UintValue(tag, result)
}

// assignBaseOp maps each compound-assignment opcode to the plain operator it
// behaves identically to for value-production purposes (§4.4).
var assignBaseOp = map[Opcode]Opcode{
	OpAddAssign:       OpAdd,
	OpSubAssign:       OpSub,
	OpMulAssign:       OpMul,
	OpDivAssign:       OpDiv,
	OpModAssign:       OpMod,
	OpShlAssign:       OpShl,
	OpShrAssign:       OpShr,
	OpShlLogicAssign:  OpShlLogic,
	OpShrLogicAssign:  OpShrLogic,
	OpRolAssign:       OpRol,
	OpRorAssign:       OpRor,
	OpAndAssign:       OpAnd,
	OpOrAssign:        OpOr,
	OpXorAssign:       OpXor,
	OpNandAssign:      OpNand,
	OpXnorAssign:      OpXnor,
	OpNorAssign:       OpNor,
}

func baseOpOfAssign(op Opcode) Opcode {
	if base, ok := assignBaseOp[op]; ok {
		return base
	}
	return OpAdd
}

// mergeOpNames backs SetValueMergeOp / ApplyValueOp (§4.7), the typed-value
// merge dispatcher a host calls to combine two already-evaluated Values
// (e.g. option defaults merging with a command-line override) using the
// same operator vocabulary as the expression grammar, addressed by name
// instead of by scanning operator text.
var mergeOpNames = map[string]Opcode{
	"+": OpAdd, "-": OpSub, "*": OpMul, "/": OpDiv, "%": OpMod,
	"<<": OpShl, ">>": OpShr, "<<<": OpShlLogic, ">>>": OpShrLogic,
	"r<<": OpRol, "r>>": OpRor,
	"&": OpAnd, "|": OpOr, "^": OpXor,
	"~&": OpNand, "~|": OpNor, "~^": OpXnor,
}

// rejectedForMerge reports whether op cannot sensibly combine two standalone
// values (comparisons, logical connectives, assignment, sequencing) — the
// merge dispatcher falls back to addition and logs the rejection rather than
// producing a nonsensical bool-as-value result.
func rejectedForMerge(op Opcode) bool {
	switch op {
	case OpLt, OpLe, OpGt, OpGe, OpEq, OpNe, OpSpaceship,
		OpLogAnd, OpLogNand, OpLogXor, OpLogXnor, OpLogOr, OpLogNor,
		OpTernary, OpComma, OpSemi:
		return true
	}
	return isAssignOp(op)
}

// SetValueMergeOp resolves a named operator for ApplyValueOp, defaulting to
// OpAdd for an unrecognized or rejected name.
func SetValueMergeOp(opStr string) Opcode {
	op, ok := mergeOpNames[opStr]
	if !ok || rejectedForMerge(op) {
		return OpAdd
	}
	return op
}

// coerceToTag width-matches right to left's tag before a merge so e.g.
// adding a DWord default to a Byte override doesn't silently truncate the
// wider side.
func coerceToTag(v Value, tag ValueTag) Value {
	if v.Tag.isFloat() == tag.isFloat() {
		return v.withTag(tag)
	}
	if tag.isFloat() {
		return FloatValue(tag, v.Float())
	}
	return UintValue(tag, v.Uint())
}

// ApplyValueOp merges two standalone Values (no position in any expression
// string) by name, used by hosts combining an option's default with an
// override. Behaviorally equivalent to applyOperator but without recursion
// into the expression grammar.
func ApplyValueOp(opStr string, left, right Value, diags *Diagnostics) Value {
	op := mergeOpNames[opStr]
	if op == OpNull || rejectedForMerge(op) {
		if diags != nil {
			diags.logf("expression evaluator: merge operator %q rejected, using +", opStr)
		}
		op = OpAdd
	}
	right = coerceToTag(right, left.Tag)
	result, err := applyOperator(left, right, op)
	if err != nil {
		return left
	}
	return result
}
