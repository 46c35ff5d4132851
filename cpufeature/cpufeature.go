// Package cpufeature answers the expression evaluator's cpuid: patch-value
// subtype (§4.5) against the host CPU, using klauspost/cpuid/v2 in place of
// the raw CPUID leaf probing the original evaluator's feature table hand-
// rolled. A handful of keys have no CPUID bit at all (wine, win64, winver,
// hostver) and are answered from the Host struct populated at process
// start instead.
package cpufeature

import (
	"strings"

	"github.com/klauspost/cpuid/v2"
)

// Host carries the synthetic, non-CPUID keys a caller wires up once at
// startup (§12 SUPPLEMENTED FEATURES): the target's Wine/Windows identity,
// which this package cannot discover from the CPU alone.
type Host struct {
	Wine       bool
	Win64      bool
	WindowsVer uint32
	HostVer    uint32
}

// Lookup resolves name (case-insensitive) against klauspost/cpuid/v2's
// detected feature set, falling back to host for the synthetic keys. known
// is false when name matches nothing this package recognizes, signaling the
// caller to fall back to the §7 "unknown feature -> warn once, assume
// supported" behavior.
func Lookup(name string, host Host) (supported bool, known bool) {
	switch strings.ToLower(name) {
	case "wine":
		return host.Wine, true
	case "win64":
		return host.Win64, true
	case "winver":
		return host.WindowsVer != 0, true
	case "hostver":
		return host.HostVer != 0, true
	case "intel":
		return cpuid.CPU.VendorID == cpuid.Intel, true
	case "amd":
		return cpuid.CPU.VendorID == cpuid.AMD, true
	case "model":
		return cpuid.CPU.Model != 0, true
	}

	feat, ok := featureNames[strings.ToLower(name)]
	if !ok {
		return false, false
	}
	return cpuid.CPU.Supports(feat), true
}

var featureNames = map[string]cpuid.FeatureID{
	"mmx":       cpuid.MMX,
	"mmxext":    cpuid.MMXEXT,
	"3dnow":     cpuid.AMD3DNOW,
	"3dnowext":  cpuid.AMD3DNOWEXT,
	"cmov":      cpuid.CMOV,
	"sse":       cpuid.SSE,
	"sse2":      cpuid.SSE2,
	"sse3":      cpuid.SSE3,
	"ssse3":     cpuid.SSSE3,
	"sse41":     cpuid.SSE4,
	"sse42":     cpuid.SSE42,
	"sse4a":     cpuid.SSE4A,
	"pclmulqdq": cpuid.CLMUL,
	"cmpxchg8":  cpuid.CMPXCHG8,
	"cmpxchg16b": cpuid.CX16,
	"avx":       cpuid.AVX,
	"avx2":      cpuid.AVX2,
	"fma":       cpuid.FMA3,
	"fma4":      cpuid.FMA4,
	"f16c":      cpuid.F16C,
	"movbe":     cpuid.MOVBE,
	"popcnt":    cpuid.POPCNT,
	"bmi1":      cpuid.BMI1,
	"bmi2":      cpuid.BMI2,
	"adx":       cpuid.ADX,
	"sha":       cpuid.SHA,
	"gfni":      cpuid.GFNI,
	"abm":       cpuid.LZCNT,
	"xop":       cpuid.XOP,
	"tbm":       cpuid.TBM,
	"erms":      cpuid.ERMS,
	"fsrm":      cpuid.FSRM,
	"avx512f":   cpuid.AVX512F,
	"avx512dq":  cpuid.AVX512DQ,
	"avx512pf":  cpuid.AVX512PF,
	"avx512er":  cpuid.AVX512ER,
	"avx512cd":  cpuid.AVX512CD,
	"avx512bw":  cpuid.AVX512BW,
	"avx512vl":  cpuid.AVX512VL,
	"avx512vbmi":  cpuid.AVX512VBMI,
	"avx512vbmi2": cpuid.AVX512VBMI2,
	"avx512ifma":  cpuid.AVX512IFMA,
	"avx512vnni":  cpuid.AVX512VNNI,
	"avx512bitalg": cpuid.AVX512BITALG,
	"avx512vpopcntdq": cpuid.AVX512VPOPCNTDQ,
	"amxtile":   cpuid.AMXTILE,
	"amxint8":   cpuid.AMXINT8,
	"amxfp16":   cpuid.AMXFP16,
	"fxsave":    cpuid.FXSR,
}
