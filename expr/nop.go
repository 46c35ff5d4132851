package expr

// Multi-byte NOP tables for lengths 0-15, transcribed verbatim from
// NOP_Strings_Lookup in expression.cpp: a direct per-length lookup, not a
// derived or concatenated sequence. Intel and AMD agree through length 10
// and diverge at 11-15, where each vendor has its own canned encoding.
var nopTableIntel = [16][]byte{
	{},
	{0x90},
	{0x66, 0x90},
	{0x0F, 0x1F, 0x00},
	{0x0F, 0x1F, 0x40, 0x00},
	{0x0F, 0x1F, 0x44, 0x00, 0x00},
	{0x66, 0x0F, 0x1F, 0x44, 0x00, 0x00},
	{0x0F, 0x1F, 0x80, 0x00, 0x00, 0x00, 0x00},
	{0x0F, 0x1F, 0x84, 0x00, 0x00, 0x00, 0x00, 0x00},
	{0x66, 0x0F, 0x1F, 0x84, 0x00, 0x00, 0x00, 0x00, 0x00},
	{0x66, 0x2E, 0x0F, 0x1F, 0x84, 0x00, 0x00, 0x00, 0x00, 0x00},
	{0x66, 0x66, 0x2E, 0x0F, 0x1F, 0x84, 0x00, 0x00, 0x00, 0x00, 0x00},
	{0x66, 0x66, 0x66, 0x2E, 0x0F, 0x1F, 0x84, 0x00, 0x00, 0x00, 0x00, 0x00},
	{0x66, 0x66, 0x66, 0x66, 0x2E, 0x0F, 0x1F, 0x84, 0x00, 0x00, 0x00, 0x00, 0x00},
	{0x66, 0x66, 0x66, 0x66, 0x66, 0x2E, 0x0F, 0x1F, 0x84, 0x00, 0x00, 0x00, 0x00, 0x00},
	{0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x2E, 0x0F, 0x1F, 0x84, 0x00, 0x00, 0x00, 0x00, 0x00},
}

var nopTableAMD = [16][]byte{
	{},
	{0x90},
	{0x66, 0x90},
	{0x0F, 0x1F, 0x00},
	{0x0F, 0x1F, 0x40, 0x00},
	{0x0F, 0x1F, 0x44, 0x00, 0x00},
	{0x66, 0x0F, 0x1F, 0x44, 0x00, 0x00},
	{0x0F, 0x1F, 0x80, 0x00, 0x00, 0x00, 0x00},
	{0x0F, 0x1F, 0x84, 0x00, 0x00, 0x00, 0x00, 0x00},
	{0x66, 0x0F, 0x1F, 0x84, 0x00, 0x00, 0x00, 0x00, 0x00},
	{0x66, 0x2E, 0x0F, 0x1F, 0x84, 0x00, 0x00, 0x00, 0x00, 0x00},
	{0x0F, 0x1F, 0x44, 0x00, 0x00, 0x66, 0x0F, 0x1F, 0x44, 0x00, 0x00},
	{0x66, 0x0F, 0x1F, 0x44, 0x00, 0x00, 0x66, 0x0F, 0x1F, 0x44, 0x00, 0x00},
	{0x66, 0x0F, 0x1F, 0x44, 0x00, 0x00, 0x0F, 0x1F, 0x80, 0x00, 0x00, 0x00, 0x00},
	{0x0F, 0x1F, 0x80, 0x00, 0x00, 0x00, 0x00, 0x0F, 0x1F, 0x80, 0x00, 0x00, 0x00, 0x00},
	{0x0F, 0x1F, 0x80, 0x00, 0x00, 0x00, 0x00, 0x0F, 0x1F, 0x84, 0x00, 0x00, 0x00, 0x00, 0x00},
}

// nopSequence looks up the vendor's canned sequence for a length already
// reduced to 0-15 by buildMultiByteNop.
func nopSequence(vendorIsAMD bool, length int) []byte {
	if vendorIsAMD {
		return nopTableAMD[length]
	}
	return nopTableIntel[length]
}

// buildMultiByteNop implements the nop:COUNT subtype (§4.5, §12 SUPPLEMENTED
// FEATURES): for COUNT <= 15 it emits one sequence of that exact length;
// for COUNT > 15 it searches divisors 15 down to 1 for the largest exact
// divisor and emits that many copies of the divisor-length sequence.
func buildMultiByteNop(count int, vendorIsAMD bool) Value {
	if count <= 0 {
		return CodeValue(nil)
	}
	unit := count
	reps := 1
	if count > 15 {
		unit = 1
		for d := 15; d >= 1; d-- {
			if count%d == 0 {
				unit = d
				break
			}
		}
		reps = count / unit
	}
	seq := nopSequence(vendorIsAMD, unit)
	buf := make([]byte, 0, len(seq)*reps)
	for i := 0; i < reps; i++ {
		buf = append(buf, seq...)
	}
	return CodeValue(buf)
}

// buildInt3 implements the int3:COUNT subtype: COUNT copies of the 0xCC
// breakpoint opcode.
func buildInt3(count int) Value {
	if count <= 0 {
		return CodeValue(nil)
	}
	buf := make([]byte, count)
	for i := range buf {
		buf[i] = 0xCC
	}
	return CodeValue(buf)
}
