package memimage

import "testing"

func TestReadUninitializedFails(t *testing.T) {
	im := New()
	if _, ok := im.ReadSized(0x1000, 32, false); ok {
		t.Errorf("expected read of untouched memory to report ok=false")
	}
}

func TestWriteThenReadUintRoundTrips(t *testing.T) {
	im := New()
	im.WriteUint(0x2000, 32, 0xDEADBEEF)

	raw, ok := im.ReadSized(0x2000, 32, false)
	if !ok {
		t.Fatalf("expected read to succeed")
	}
	if raw != 0xDEADBEEF {
		t.Errorf("got %#x, want 0xDEADBEEF", raw)
	}
}

func TestReadCrossingPageBoundary(t *testing.T) {
	im := New()
	// place a 4-byte value straddling the 4096-byte page boundary
	im.WriteUint(pageSize-2, 32, 0x11223344)

	raw, ok := im.ReadSized(pageSize-2, 32, false)
	if !ok {
		t.Fatalf("expected cross-page read to succeed")
	}
	if raw != 0x11223344 {
		t.Errorf("got %#x, want 0x11223344", raw)
	}
}

func TestPartiallyInitializedReadFails(t *testing.T) {
	im := New()
	im.WriteBytes(0x3000, []byte{1, 2})
	// bytes 0x3002/0x3003 were never written
	if _, ok := im.ReadSized(0x3000, 32, false); ok {
		t.Errorf("expected partially-initialized read to fail")
	}
}

func TestFloatRoundTrip(t *testing.T) {
	im := New()
	im.WriteFloat32(0x4000, 3.5)
	raw32, ok := im.ReadSized(0x4000, 32, true)
	if !ok {
		t.Fatalf("expected float32 read to succeed")
	}
	if raw32 != uint64(0x40600000) {
		t.Errorf("got %#x, want bit pattern of 3.5", raw32)
	}

	im.WriteFloat64(0x5000, 2.0)
	raw64, ok := im.ReadSized(0x5000, 64, true)
	if !ok {
		t.Fatalf("expected float64 read to succeed")
	}
	if raw64 != uint64(0x4000000000000000) {
		t.Errorf("got %#x, want bit pattern of 2.0", raw64)
	}
}

func TestReadSizedRejectsBadWidth(t *testing.T) {
	im := New()
	im.WriteUint(0x6000, 32, 1)
	if _, ok := im.ReadSized(0x6000, 0, false); ok {
		t.Errorf("expected widthBits=0 to fail")
	}
	if _, ok := im.ReadSized(0x6000, 128, false); ok {
		t.Errorf("expected widthBits=128 to fail")
	}
}
