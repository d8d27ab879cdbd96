package token

import "strings"

// keywords maps the upper-cased spelling of every directive, prefix,
// operator-word and mnemonic to its Kind. Lookup in the lexer is always
// case-insensitive at this table regardless of the symbol table's
// case-sensitivity flag: the language keywords are fixed, only user
// identifiers vary in case sensitivity.
var keywords = map[string]Kind{
	"ASSUME": ASSUME, "CODESEG": CODESEG, "DATASEG": DATASEG, "UDATASEG": UDATASEG,
	"DB": DB, "DD": DD, "DQ": DQ, "DT": DT, "DW": DW,
	"END": END, "ENDS": ENDS, "EQU": EQU, "EXTRN": EXTRN, "GROUP": GROUP,
	"IDEAL": IDEAL, "MODEL": MODEL, "ORG": ORG, "ALIGN": ALIGN,
	"PRIVATE": PRIVATE, "PROC": PROC, "PUBLIC": PUBLIC, "SEGMENT": SEGMENT,
	"STACK": STACK, "UNINIT": UNINIT, "PAGE": PAGE, "PARA": PARA, "JUMPS": JUMPS,
	"P8086": P8086, "P8087": P8087, "PNO87": PNO87, "P287": P287, "P286": P286, "P286N": P286N,

	"BYTE": BYTE, "WORD": WORD, "DWORD": DWORD, "FWORD": FWORD, "QWORD": QWORD, "TBYTE": TBYTE,
	"DUP": DUP, "FAR": FAR, "NEAR": NEAR, "SHORT": SHORT, "OFFSET": OFFSET, "PTR": PTR, "SEG": SEG,

	"REP": REP, "REPE": REPE, "REPZ": REPZ, "REPNE": REPNE, "REPNZ": REPNZ,

	"AAA": AAA, "AAD": AAD, "AAM": AAM, "AAS": AAS, "ADC": ADC, "ADD": ADD, "AND": AND,
	"CALL": CALL, "CBW": CBW, "CLC": CLC, "CLD": CLD, "CLI": CLI, "CMC": CMC, "CMP": CMP,
	"CMPS": CMPS, "CMPSB": CMPSB, "CMPSW": CMPSW, "CWD": CWD, "DAA": DAA, "DAS": DAS,
	"DEC": DEC, "DIV": DIV, "HLT": HLT, "IDIV": IDIV, "IMUL": IMUL, "IN": IN, "INC": INC,
	"INS": INS, "INSB": INSB, "INSW": INSW, "INT": INT, "INT3": INT3, "INTO": INTO,
	"IRET": IRET, "IRETW": IRETW, "JCXZ": JCXZ, "JMP": JMP, "LAHF": LAHF, "LEA": LEA,
	"LDS": LDS, "LES": LES, "LOCK": LOCK, "LODS": LODS, "LODSB": LODSB, "LODSW": LODSW,
	"LOOP": LOOP, "LOOPE": LOOPE, "LOOPZ": LOOPZ, "LOOPNE": LOOPNE, "LOOPNZ": LOOPNZ,
	"MOV": MOV, "MOVS": MOVS, "MOVSB": MOVSB, "MOVSW": MOVSW, "MUL": MUL, "NEG": NEG,
	"NOP": NOP, "NOT": NOT, "OR": OR, "OUT": OUT, "OUTS": OUTS, "OUTSB": OUTSB, "OUTSW": OUTSW,
	"POP": POP, "POPF": POPF, "POPFW": POPFW, "PUSH": PUSH, "PUSHF": PUSHF, "PUSHFW": PUSHFW,
	"RCL": RCL, "RCR": RCR, "ROL": ROL, "ROR": ROR, "RET": RET, "RETF": RETF, "RETN": RETN,
	"SAHF": SAHF, "SAL": SAL, "SAR": SAR, "SHL": SHL, "SHR": SHR, "SBB": SBB,
	"SCAS": SCAS, "SCASB": SCASB, "SCASW": SCASW, "STC": STC, "STD": STD, "STI": STI,
	"STOS": STOS, "STOSB": STOSB, "STOSW": STOSW, "SUB": SUB, "TEST": TEST, "WAIT": WAIT,
	"XCHG": XCHG, "XLAT": XLAT, "XLATB": XLATB, "XOR": XOR,

	"JA": JA, "JAE": JAE, "JB": JB, "JBE": JBE, "JC": JC, "JE": JE, "JZ": JZ,
	"JG": JG, "JGE": JGE, "JL": JL, "JLE": JLE, "JNA": JNA, "JNAE": JNAE, "JNB": JNB,
	"JNBE": JNBE, "JNC": JNC, "JNE": JNE, "JNG": JNG, "JNGE": JNGE, "JNL": JNL,
	"JNLE": JNLE, "JNO": JNO, "JNP": JNP, "JNS": JNS, "JNZ": JNZ, "JO": JO, "JP": JP,
	"JPE": JPE, "JPO": JPO, "JS": JS,

	"FLD": FLD, "FLD1": FLD1, "FLDZ": FLDZ, "FST": FST, "FSTP": FSTP,
	"FADD": FADD, "FADDP": FADDP, "FSUB": FSUB, "FSUBP": FSUBP,
	"FMUL": FMUL, "FMULP": FMULP, "FDIV": FDIV, "FDIVP": FDIVP,
	"FCOMP": FCOMP, "FCOMPP": FCOMPP, "FCHS": FCHS, "FABS": FABS,
	"FINIT": FINIT, "FNINIT": FNINIT, "FNSTSW": FNSTSW, "FWAIT": FWAIT,

	"ST": ST,
	"CS": CS,
}

var keywordNameByKind map[Kind]string

func init() {
	keywordNameByKind = make(map[Kind]string, len(keywords))
	for name, k := range keywords {
		if _, exists := keywordNameByKind[k]; !exists {
			keywordNameByKind[k] = name
		}
	}
}

// Lookup returns the keyword Kind for the upper-cased identifier name, and
// whether it was found. Falls back to TOK_LABEL (false) for anything else.
func Lookup(name string) (Kind, bool) {
	k, ok := keywords[strings.ToUpper(name)]
	return k, ok
}
