package ir

// Op describes a built-in operator spelled with punctuation in the query
// language: its registry opcode, the literal symbol the front-end parsed,
// and the engine-side function name.
type Op struct {
	Opcode     int64
	Symbol     string
	EngineName string
}

// Built-in opcodes. Values are part of the function registry contract.
const (
	// opcodeNone marks a plain function call that was not spelled with
	// operator punctuation.
	opcodeNone int64 = iota - 1
	opcodeMultiply
	opcodeSubtract
	opcodeAdd
	opcodeDivide
	opcodeEqual
	opcodeNotEqual
	opcodeLessThanEqual
	opcodeGreaterThanEqual
	opcodeLessThan
	opcodeGreaterThan
	opcodeLogicalAnd
	opcodeLogicalOr
	opcodeModulo
)

// OpMap resolves a parsed operator symbol to its registry entry.
var OpMap = map[string]Op{
	"*":   {opcodeMultiply, "*", "multiply"},
	"-":   {opcodeSubtract, "-", "subtract"},
	"+":   {opcodeAdd, "+", "add"},
	"/":   {opcodeDivide, "/", "divide"},
	"==":  {opcodeEqual, "==", "equal"},
	"!=":  {opcodeNotEqual, "!=", "notEqual"},
	"<=":  {opcodeLessThanEqual, "<=", "lessThanEqual"},
	">=":  {opcodeGreaterThanEqual, ">=", "greaterThanEqual"},
	"<":   {opcodeLessThan, "<", "lessThan"},
	">":   {opcodeGreaterThan, ">", "greaterThan"},
	"and": {opcodeLogicalAnd, "and", "logicalAnd"},
	"or":  {opcodeLogicalOr, "or", "logicalOr"},
	"%":   {opcodeModulo, "%", "modulo"},
}
