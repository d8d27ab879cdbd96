package token

import "strings"

// Segment register numbers, matching the reference order ES, CS, SS, DS.
const (
	SR_ES = iota
	SR_CS
	SR_SS
	SR_DS
	NSREG
)

// 8-bit general register numbers.
const (
	AL = iota
	CL
	DL
	BL
	AH
	CH
	DH
	BH
)

// 16-bit general register numbers.
const (
	AX = iota
	CX
	DX
	BX
	SP
	BP
	SI
	DI
)

var reg8Names = [8]string{"AL", "CL", "DL", "BL", "AH", "CH", "DH", "BH"}
var reg16Names = [8]string{"AX", "CX", "DX", "BX", "SP", "BP", "SI", "DI"}
var sregNames = [4]string{"ES", "CS", "SS", "DS"}

func Reg8Name(n int) string  { return reg8Names[n&7] }
func Reg16Name(n int) string { return reg16Names[n&7] }
func SregName(n int) string  { return sregNames[n&3] }

var reg8ByName = map[string]int{}
var reg16ByName = map[string]int{}
var sregByName = map[string]int{}

func init() {
	for i, n := range reg8Names {
		reg8ByName[n] = i
	}
	for i, n := range reg16Names {
		reg16ByName[n] = i
	}
	for i, n := range sregNames {
		sregByName[n] = i
	}
}

// LookupRegister classifies an upper-cased identifier as a register,
// returning its Kind and register number. The register table is
// consulted before the keyword table, matching the reference lexer's
// "registers first" precedence.
func LookupRegister(name string) (Kind, int, bool) {
	up := strings.ToUpper(name)
	if n, ok := reg8ByName[up]; ok {
		return REG8, n, true
	}
	if n, ok := reg16ByName[up]; ok {
		return REG16, n, true
	}
	if n, ok := sregByName[up]; ok {
		return SREG, n, true
	}
	return NONE, 0, false
}
