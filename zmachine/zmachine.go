// Package zmachine implements the instruction decoder, call stack, and
// opcode dispatch loop that ties the memory, text, object, and dictionary
// packages together into a running interpreter (spec.md S4.6-S4.7).
package zmachine

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/oliverhutch/goz/dictionary"
	"github.com/oliverhutch/goz/zcore"
	"github.com/oliverhutch/goz/zobject"
	"github.com/oliverhutch/goz/zstring"
)

// RuntimeError is the fatal condition sent to the front end when the
// execution loop stops for any reason other than `quit`: an unimplemented
// opcode, a corrupt Z-string, division by zero, an attempted return past
// the outermost call frame, or an error from the Interface's input calls
// (including the front end closing while input is pending) (spec.md §7,
// "the execution loop treats every Error as fatal").
type RuntimeError string

func (e RuntimeError) Error() string { return string(e) }

// memoryStream tracks one nested activation of output stream 3 (the
// memory-table stream): where its length word lives, and the write
// cursor just past it.
type memoryStream struct {
	lengthWordAddr uint32
	cursor         uint32
}

// streams holds the enabled/disabled state of the four output streams
// (spec.md S4.5 "Output streams").
type streams struct {
	screen     bool
	transcript bool
	command    bool
	memory     []memoryStream
}

func (s *streams) memoryActive() bool {
	return len(s.memory) > 0
}

// ZMachine is the running interpreter: memory, object table, dictionary,
// call stack, and the single front-end Interface it drives.
type ZMachine struct {
	memory     *zcore.Memory
	objects    *zobject.Table
	alphabets  *zstring.Alphabets
	dictionary *dictionary.Dictionary
	original   []uint8 // pristine copy of the loaded story file, for `restart`

	callStack CallStack
	streams   streams
	rng       *rand.Rand

	ui Interface

	fatal RuntimeError

	undo *undoState

	activeWindowLower  bool
	upperWindowHeight  int
	cursorLine         int
	cursorCol          int

	logger *log.Logger
}

// Load parses a story file and returns a ready-to-run ZMachine bound to
// ui for all input/output.
func Load(storyFile []uint8, ui Interface, logger *log.Logger) (*ZMachine, error) {
	mem, err := zcore.Load(storyFile)
	if err != nil {
		return nil, err
	}

	original := make([]uint8, len(storyFile))
	copy(original, storyFile)

	alphabets := zstring.Load(mem)

	z := &ZMachine{
		memory:     mem,
		alphabets:  alphabets,
		original:   original,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		ui:         ui,
		logger:     logger,
		streams:    streams{screen: true},
	}
	z.objects = zobject.New(mem, alphabets)
	z.objects.Warn = z.warn

	if mem.DictionaryBase != 0 {
		z.dictionary = dictionary.Load(mem, alphabets)
	}

	z.callStack.push(CallStackFrame{pc: mem.InitialPC})

	return z, nil
}

func (z *ZMachine) warn(format string, args ...any) {
	if z.logger != nil {
		z.logger.Printf("warning: "+format, args...)
	}
}

// runtimeError records a fatal interpreter condition. Step checks this
// after every handler runs, so a handler reporting one here always stops
// the execution loop on its way back out, regardless of what bool it
// returns itself.
func (z *ZMachine) runtimeError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if z.logger != nil {
		z.logger.Printf("runtime error: %s", msg)
	}
	if z.fatal == "" {
		z.fatal = RuntimeError(msg)
	}
}

// Err returns the fatal error that stopped Run, or nil if the session
// ended normally through the `quit` opcode.
func (z *ZMachine) Err() error {
	if z.fatal == "" {
		return nil
	}
	return z.fatal
}

func (z *ZMachine) readIncPC(frame *CallStackFrame) uint8 {
	v := z.memory.ReadByte(frame.pc)
	frame.pc++
	return v
}

func (z *ZMachine) readHalfWordIncPC(frame *CallStackFrame) uint16 {
	v := z.memory.ReadWord(frame.pc)
	frame.pc += 2
	return v
}

// readVariable resolves a variable number: 0 is the current frame's
// evaluation stack, 1-15 are locals, 16+ are globals. indirect is true
// for the seven opcodes (inc, dec, inc_chk, dec_chk, load, store, pull)
// whose variable-0 reference reads/writes the top of stack in place
// rather than popping/pushing it.
func (z *ZMachine) readVariable(variable uint8, indirect bool) uint16 {
	frame := z.callStack.peek()
	switch {
	case variable == 0:
		if indirect {
			return frame.peek(z)
		}
		return frame.pop(z)
	case variable < 16:
		if int(variable-1) >= len(frame.locals) {
			z.warn("read of non-existent local variable %d (pc 0x%x)", variable, frame.pc)
			return 0
		}
		return frame.locals[variable-1]
	default:
		return z.memory.ReadWord(z.memory.GlobalVarBase + 2*uint32(variable-16))
	}
}

func (z *ZMachine) writeVariable(variable uint8, value uint16, indirect bool) {
	frame := z.callStack.peek()
	switch {
	case variable == 0:
		if indirect {
			_ = frame.pop(z)
		}
		frame.push(value)
	case variable < 16:
		if int(variable-1) >= len(frame.locals) {
			z.warn("write to non-existent local variable %d (pc 0x%x)", variable, frame.pc)
			return
		}
		frame.locals[variable-1] = value
	default:
		_ = z.memory.WriteWord(z.memory.GlobalVarBase+2*uint32(variable-16), value)
	}
}

// call invokes a routine, resolving the routine address operand, copying
// argument values into the callee's locals (defaulting any not supplied),
// and pushing a new frame. A packed address of 0 is the "null routine":
// it returns false immediately without a call.
func (z *ZMachine) call(inst Instruction, routineType RoutineType) {
	frame := z.callStack.peek()
	packed := inst.Operands[0].Resolve(z)

	if packed == 0 {
		if routineType == routineFunction {
			z.writeVariable(z.readIncPC(frame), 0, false)
		}
		return
	}

	addr := z.memory.UnpackRoutine(uint32(packed))
	localCount := z.memory.ReadByte(addr)
	addr++

	locals := make([]uint16, localCount)
	for i := 0; i < int(localCount); i++ {
		if i+1 < len(inst.Operands) {
			locals[i] = inst.Operands[i+1].Resolve(z)
		} else if z.memory.Version < 5 {
			locals[i] = z.memory.ReadWord(addr)
		}
		if z.memory.Version < 5 {
			addr += 2
		}
	}

	z.callStack.push(CallStackFrame{
		pc:              addr,
		locals:          locals,
		routineType:     routineType,
		numValuesPassed: len(inst.Operands) - 1,
	})
}

// handleBranch applies a branch trailer following result, per spec.md
// S4.6 "Branch encoding": rfalse/rtrue shorthand for offsets 0 and 1.
func (z *ZMachine) handleBranch(frame *CallStackFrame, result bool) {
	b1 := z.readIncPC(frame)
	branchOnTrue := b1&0x80 != 0
	singleByte := b1&0x40 != 0
	offset := int32(b1 & 0x3f)

	if !singleByte {
		b2 := z.readIncPC(frame)
		offset = int32(int16(uint16(b1&0x3f)<<8|uint16(b2))<<2) >> 2
	}

	if result != branchOnTrue {
		return
	}

	switch offset {
	case 0:
		z.doReturn(0)
	case 1:
		z.doReturn(1)
	default:
		frame.pc = uint32(int64(frame.pc) + int64(offset) - 2)
	}
}

// doReturn pops the current frame and, if its caller expected a result
// (routineFunction), stores val into the variable named by the byte
// following the call instruction.
func (z *ZMachine) doReturn(val uint16) {
	oldFrame, err := z.callStack.pop()
	if err != nil {
		z.runtimeError("%s", err)
		return
	}
	if z.callStack.depth() == 0 {
		z.runtimeError("returned past the outermost routine, treating as quit")
		z.callStack.push(oldFrame) // keep a valid base frame for Step's final peek
		return
	}
	if oldFrame.routineType == routineFunction {
		newFrame := z.callStack.peek()
		dest := z.readIncPC(newFrame)
		z.writeVariable(dest, val, false)
	}
}

// appendText routes decoded text to whichever output streams are active,
// per spec.md S4.5: while stream 3 (memory) is selected no other stream
// receives output even though the others remain marked selected.
func (z *ZMachine) appendText(s string) {
	if z.streams.memoryActive() {
		cur := &z.streams.memory[len(z.streams.memory)-1]
		for _, r := range s {
			_ = z.memory.WriteByte(cur.cursor, uint8(r))
			cur.cursor++
		}
		return
	}

	if z.streams.screen {
		z.ui.Print(s)
	}
	if z.streams.transcript {
		z.ui.Print(s)
	}
	// stream 4 (command script) records player input, not output text;
	// nothing to do with it here.
}

func (z *ZMachine) printChar(r rune) {
	z.appendText(string(r))
}

// decodeText decodes the inline Z-string at frame.pc, advancing frame.pc
// past it.
func (z *ZMachine) decodeText(frame *CallStackFrame) string {
	text, consumed, err := zstring.Decode(z.memory, frame.pc, z.alphabets)
	frame.pc += consumed
	if err != nil {
		z.runtimeError("decoding text at 0x%x: %s", frame.pc, err)
		return ""
	}
	return text
}

// Run drives the fetch/decode/execute loop until a `quit` opcode, a fatal
// RuntimeError, or the Interface reports the player ended the session. It
// returns the fatal error, if any, so a caller (e.g. cmd/goz) can map it
// to a non-zero exit code.
func (z *ZMachine) Run() error {
	for {
		if !z.Step() {
			break
		}
	}
	z.ui.Quit()
	return z.Err()
}

// Step executes exactly one instruction. It returns false when the
// program has reached `quit` or a handler raised a RuntimeError - once
// Err() is non-nil the loop never takes another step, no matter what the
// handler itself returned.
func (z *ZMachine) Step() bool {
	frame := z.callStack.peek()
	inst := z.decodeInstruction(frame)

	var table []handler
	switch inst.Class {
	case OP0:
		table = op0Handlers[:]
	case OP1:
		table = op1Handlers[:]
	case OP2:
		table = op2Handlers[:]
	case VAR:
		table = varHandlers[:]
	case EXT:
		table = extHandlers[:]
	}

	if int(inst.Number) >= len(table) || table[inst.Number] == nil {
		z.runtimeError("unimplemented opcode class=%d number=%d at 0x%x", inst.Class, inst.Number, inst.AtPC)
		return false
	}

	keepRunning := table[inst.Number](z, frame, inst)
	return keepRunning && z.fatal == ""
}

// restart reloads dynamic memory from the pristine story image and resets
// the call stack to the initial routine, preserving the transcript and
// fixed-pitch flag bits (spec.md S4.7 "restart").
func (z *ZMachine) restart() {
	z.memory.RestoreImage(z.original)
	z.callStack = CallStack{}
	z.callStack.push(CallStackFrame{pc: z.memory.InitialPC})
	z.streams = streams{screen: true, transcript: z.streams.transcript}
	z.activeWindowLower = false
	z.upperWindowHeight = 0
	z.ui.Clear()
}

func (z *ZMachine) readStatusBar() {
	if z.memory.Version > 3 {
		return
	}
	obj := uint16(z.readVariable(16, false))
	z.ui.UpdateStatusBar(StatusBar{
		PlaceName:   z.objects.ShortName(obj),
		Score:       int(int16(z.readVariable(17, false))),
		Moves:       int(z.readVariable(18, false)),
		IsTimeBased: z.memory.StatusBarTimeBased,
	})
}

func (z *ZMachine) currentTerminators() []uint8 {
	terms := []uint8{13}
	if z.memory.Version < 5 || z.memory.TerminatingCharTableBase == 0 {
		return terms
	}
	ptr := z.memory.TerminatingCharTableBase
	for {
		b := z.memory.ReadByte(ptr)
		if b == 0 {
			break
		}
		if b == 255 {
			for c := 129; c <= 154; c++ {
				terms = append(terms, uint8(c))
			}
			break
		}
		if (b >= 129 && b <= 154) || (b >= 252 && b <= 254) {
			terms = append(terms, b)
		}
		ptr++
	}
	return terms
}

// sread implements the `sread`/`aread` opcode: blocks on ReadLine, writes
// the lowercased input into the text buffer, tokenizes it into the parse
// buffer, and (v5+) stores the terminating character.
func (z *ZMachine) sread(frame *CallStackFrame, inst Instruction) {
	z.readStatusBar()

	text, terminator, err := z.ui.ReadLine(z.currentTerminators())
	if err != nil {
		z.runtimeError("reading input: %s", err)
		return
	}
	text = strings.ToLower(text)

	textBuffer := inst.Operands[0].Resolve(z)
	var parseBuffer uint16
	if len(inst.Operands) > 1 {
		parseBuffer = inst.Operands[1].Resolve(z)
	}

	maxLen := uint32(z.memory.ReadByte(uint32(textBuffer)))
	dataStart := uint32(textBuffer) + 1
	if z.memory.Version >= 5 {
		dataStart++ // skip the existing-length byte we're about to overwrite
	}

	n := uint32(len(text))
	if n > maxLen {
		n = maxLen
	}
	for i := uint32(0); i < n; i++ {
		_ = z.memory.WriteByte(dataStart+i, text[i])
	}
	if z.memory.Version >= 5 {
		_ = z.memory.WriteByte(uint32(textBuffer)+1, uint8(n))
	} else {
		_ = z.memory.WriteByte(dataStart+n, 0)
	}

	if parseBuffer != 0 && z.dictionary != nil {
		z.tokenise(uint32(textBuffer), uint32(parseBuffer), z.dictionary, false)
	}

	if z.memory.Version >= 5 {
		z.writeVariable(z.readIncPC(frame), uint16(terminator), false)
	}
}

// tokenise implements the shared text-buffer-to-parse-buffer logic behind
// `sread` and the standalone `tokenise` opcode (spec.md S4.4
// "Tokenising").
func (z *ZMachine) tokenise(textBuffer, parseBuffer uint32, dict *dictionary.Dictionary, skipUnknown bool) {
	dataStart := textBuffer + 1
	var length uint32
	if z.memory.Version >= 5 {
		length = uint32(z.memory.ReadByte(textBuffer + 1))
		dataStart += 1
	} else {
		for {
			b := z.memory.ReadByte(dataStart + length)
			if b == 0 {
				break
			}
			length++
		}
	}

	raw := make([]byte, length)
	for i := range raw {
		raw[i] = z.memory.ReadByte(dataStart + uint32(i))
	}

	separators := []byte{}
	if dict != nil {
		separators = dict.Separators
	}
	tokens := dictionary.Tokenize(string(raw), separators)

	maxWords := int(z.memory.ReadByte(parseBuffer))
	_ = z.memory.WriteByte(parseBuffer+1, uint8(min(len(tokens), maxWords)))

	ptr := parseBuffer + 2
	for i, tok := range tokens {
		if i >= maxWords {
			break
		}
		var addr uint32
		if dict != nil {
			addr = dict.Lookup(tok.Text, z.memory, z.alphabets)
		}
		if addr == 0 && skipUnknown {
			// leave the slot for an unrecognised word untouched
			ptr += 4
			continue
		}
		_ = z.memory.WriteWord(ptr, uint16(addr))
		_ = z.memory.WriteByte(ptr+2, uint8(tok.Length))
		_ = z.memory.WriteByte(ptr+3, uint8(dataStart-textBuffer+uint32(tok.Start)))
		ptr += 4
	}
}

