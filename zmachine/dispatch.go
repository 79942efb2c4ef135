package zmachine

// handler executes one decoded instruction against the current frame. It
// returns false for the instruction that ends the program (`quit`), and
// some handlers also return false after recording a runtime error.
//
// Dispatch is a dense array indexed by (operand-count-class, opcode
// number) rather than a switch or map: the opcode set is small (under 200
// entries total) and fixed for the life of the process, so a direct index
// is both the simplest and the fastest way to route to a handler.
type handler func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool

var (
	op0Handlers [16]handler
	op1Handlers [16]handler
	op2Handlers [32]handler
	varHandlers [32]handler
	extHandlers [32]handler
)
