package expr

import (
	"sync"

	"github.com/dcbailey/patchexpr/util"
)

// MemoryReader backs the dereference operator (§4.2 item 6). Implementations
// (memimage.Image is the one shipped with this module) are read-only from
// the evaluator's point of view. isFloat only affects which bits the caller
// stores back into a Value; the read itself is a plain little-endian load.
type MemoryReader interface {
	ReadSized(addr uint64, widthBits int, isFloat bool) (raw uint64, ok bool)
}

// Collaborators bundles the narrow, named interfaces §6 describes the
// evaluator as consuming from its host. A nil Collaborators (or nil field)
// means "not available"; lookups fail closed the way §7's warnings say
// (option not found → 0, codecave not found → 0, unknown feature → 1).
type Collaborators struct {
	OptionLookup      func(name string) (Value, bool)
	CodecaveLookup    func(name string) (uint64, bool)
	CPUFeatureLookup  func(name string) (supported bool, known bool)
	PatchLoadedLookup func(name string) bool
	BreakpointLookup  func(name string) (uint64, bool)
	Memory            MemoryReader
}

// Context is the immutable per-evaluation state threaded explicitly through
// every recursive call, replacing the global StackSaver the source
// evaluator relied on (REDESIGN FLAGS §9).
type Context struct {
	Regs      *RegisterBank
	RelSource uint64
	Module    string

	Collaborators Collaborators
}

type warnKind int

const (
	warnAssignment warnKind = iota
	warnIncDec
	warnUnknownCPUFeature
)

// Diagnostics is the mutable sink for warnings and log lines produced during
// one evaluation. The warn-once flags belong to this sink (each
// NewDiagnostics starts with none set) and are guarded by mu. The ternary
// skip itself never calls a
// collaborator lookup at all (see evaluator.go), which trivially satisfies
// "warnings from the skipped branch do not fire" (§8) without needing a
// per-frame suppression flag; SetCodecaveSuppress below is kept as a
// separate, host-controlled mute for the `set_codecave_suppress` external
// entry point (§6), independent of ternary skipping.
type Diagnostics struct {
	mu                   sync.Mutex
	warned               map[warnKind]bool
	suppressCodecaveWarn bool
	Log                  func(format string, args ...interface{})
}

func NewDiagnostics() *Diagnostics {
	return &Diagnostics{
		warned: make(map[warnKind]bool),
		Log:    util.LogF,
	}
}

// SetCodecaveSuppress toggles the codecave-not-found warning off entirely
// for this Diagnostics sink, mirroring the §6 `set_codecave_suppress` entry
// point.
func (d *Diagnostics) SetCodecaveSuppress(suppress bool) {
	d.mu.Lock()
	d.suppressCodecaveWarn = suppress
	d.mu.Unlock()
}

func (d *Diagnostics) warnOnce(kind warnKind, format string, args ...interface{}) {
	d.mu.Lock()
	fire := !d.warned[kind]
	d.warned[kind] = true
	d.mu.Unlock()
	if fire {
		d.logf(format, args...)
	}
}

func (d *Diagnostics) logf(format string, args ...interface{}) {
	if d.Log != nil {
		d.Log(format, args...)
	}
}

func (d *Diagnostics) warnAssignmentNoOp(pos int) {
	d.warnOnce(warnAssignment, "expression evaluator: assignment at offset %d is a no-op", pos)
}

func (d *Diagnostics) warnIncDecNoOp(pos int, op string) {
	d.warnOnce(warnIncDec, "expression evaluator: %s at offset %d does not mutate storage", op, pos)
}

func (d *Diagnostics) warnUnknownFeature(name string) {
	d.warnOnce(warnUnknownCPUFeature, "expression evaluator: unknown CPU feature %q, assuming supported", name)
}

func (d *Diagnostics) warnCodecaveNotFound(name string) {
	d.mu.Lock()
	suppressed := d.suppressCodecaveWarn
	d.mu.Unlock()
	if suppressed {
		return
	}
	d.logf("expression evaluator: codecave %q not found", name)
}

func (d *Diagnostics) warnNullDeref(pos int) {
	d.logf("expression evaluator: dereference of null pointer at offset %d", pos)
}

func (d *Diagnostics) warnOptionNotFound(name string) {
	d.logf("expression evaluator: option %q not found, continuing with 0", name)
}
