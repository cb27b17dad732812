package ir

import "github.com/kbasalt/ebbc/internal/types"

// CallConv names a calling convention, carried only far enough for the
// parser to round-trip it in a printed signature (spec section 4 Non-goals
// exclude ABI detail beyond that).
type CallConv int

const (
	CallConvFast CallConv = iota
	CallConvCold
	CallConvSystemV
	CallConvWindowsFastcall
	CallConvBaldrdash
	CallConvProbestack
)

var callConvNames = map[CallConv]string{
	CallConvFast: "fast", CallConvCold: "cold",
	CallConvSystemV: "system_v", CallConvWindowsFastcall: "windows_fastcall",
	CallConvBaldrdash: "baldrdash", CallConvProbestack: "probestack",
}

var callConvByName = func() map[string]CallConv {
	m := make(map[string]CallConv, len(callConvNames))
	for cc, name := range callConvNames {
		m[name] = cc
	}
	return m
}()

func (cc CallConv) String() string { return callConvNames[cc] }

// LookupCallConv resolves a textual calling-convention name.
func LookupCallConv(name string) (CallConv, bool) {
	cc, ok := callConvByName[name]
	return cc, ok
}

// ArgumentExtension says how a sub-register argument is extended to fill a
// full register, mirroring the AbiParam.extension field of spec section 3.
type ArgumentExtension int

const (
	ExtNone ArgumentExtension = iota
	ExtSext
	ExtUext
)

func (e ArgumentExtension) String() string {
	switch e {
	case ExtSext:
		return "sext"
	case ExtUext:
		return "uext"
	}
	return ""
}

// ArgumentPurpose distinguishes the small set of special parameter/return
// roles the parser must round-trip (e.g. sret for a structure-return
// pointer). General arguments carry PurposeNormal and print nothing extra.
type ArgumentPurpose int

const (
	PurposeNormal ArgumentPurpose = iota
	PurposeStructReturn
	PurposeVMContext
	PurposeSigned
)

func (p ArgumentPurpose) String() string {
	switch p {
	case PurposeStructReturn:
		return "sret"
	case PurposeVMContext:
		return "vmctx"
	}
	return ""
}

// ArgumentLocKind distinguishes whether an AbiParam has been assigned a
// concrete location yet.
type ArgumentLocKind int

const (
	LocUnassigned ArgumentLocKind = iota
	LocReg
	LocStack
)

// ArgumentLoc is a resolved parameter/return location: either a register
// number or a stack offset, chosen by ArgumentLocKind.
type ArgumentLoc struct {
	Kind  ArgumentLocKind
	Reg   uint16
	Stack int32
}

// AbiParam describes a single signature parameter or return value.
type AbiParam struct {
	Type      types.Type
	Extension ArgumentExtension
	Purpose   ArgumentPurpose
	Location  ArgumentLoc
}

// Signature is a function's full parameter/return/calling-convention shape.
type Signature struct {
	Params   []AbiParam
	Returns  []AbiParam
	CallConv CallConv
}

// ExternalName names a function or global either by a (namespace, index)
// pair used to reference a host-provided symbol, or by a bare test-case
// name used in the textual IR's own preamble declarations.
type ExternalName struct {
	IsUser    bool
	Namespace uint32
	Index     uint32
	TestName  string
}

func UserExternalName(namespace, index uint32) ExternalName {
	return ExternalName{IsUser: true, Namespace: namespace, Index: index}
}

func TestExternalName(name string) ExternalName {
	return ExternalName{TestName: name}
}
