package zmachine

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// stubInterface is a no-op Interface good enough to load a ZMachine for
// tests that never block on player input.
type stubInterface struct{}

func (stubInterface) Print(text string)                                       {}
func (stubInterface) PrintChar(r rune)                                        {}
func (stubInterface) Clear()                                                 {}
func (stubInterface) Done()                                                  {}
func (stubInterface) Quit()                                                  {}
func (stubInterface) SetTextStyle(style TextStyle)                           {}
func (stubInterface) ReadLine(terminators []uint8) (string, InputCode, error) {
	return "", 0, nil
}
func (stubInterface) ReadChar() (InputCode, error)                    { return 0, nil }
func (stubInterface) SplitWindow(lines int)                           {}
func (stubInterface) SetActiveWindow(lower bool)                      {}
func (stubInterface) EraseWindow(which int)                           {}
func (stubInterface) EraseLine()                                      {}
func (stubInterface) SetCursor(line, col int)                         {}
func (stubInterface) UpdateStatusBar(bar StatusBar)                   {}
func (stubInterface) SoundEffect(number, effect, volume, repeats int) {}

// minimalStory builds a v3 header with a global variable table in dynamic
// memory (below static base 0x80) and room from the high memory base (0xc0)
// up for short hand-assembled routines; initialPC must be at least 0xc0.
func minimalStory(initialPC, globalBase uint16) []uint8 {
	buf := make([]uint8, 256)
	buf[0x00] = 3
	binary.BigEndian.PutUint16(buf[0x0e:0x10], 0x80) // static base
	binary.BigEndian.PutUint16(buf[0x04:0x06], 0xc0) // high mem base
	binary.BigEndian.PutUint16(buf[0x06:0x08], initialPC)
	binary.BigEndian.PutUint16(buf[0x0c:0x0e], globalBase)
	return buf
}

func load(t *testing.T, buf []uint8) *ZMachine {
	t.Helper()
	z, err := Load(buf, stubInterface{}, nil)
	require.NoError(t, err)
	return z
}

func TestDecodeLongFormTwoSmallConstants(t *testing.T) {
	buf := minimalStory(0xc0, 0x50)
	// add (2OP #20): long form, both operands small constants
	buf[0xc0] = 0x14
	buf[0xc1] = 0x02
	buf[0xc2] = 0x03
	buf[0xc3] = 0x10 // store to global 0 (variable number 16)
	z := load(t, buf)

	frame := z.callStack.peek()
	inst := z.decodeInstruction(frame)

	require.Equal(t, formLong, inst.Form)
	require.Equal(t, OP2, inst.Class)
	require.EqualValues(t, 20, inst.Number)
	require.Len(t, inst.Operands, 2)
	require.EqualValues(t, 2, inst.Operands[0].Value)
	require.EqualValues(t, 3, inst.Operands[1].Value)
	require.EqualValues(t, 0xc3, frame.pc, "expected pc to stop before the store byte")
}

func TestStepAddThenQuit(t *testing.T) {
	buf := minimalStory(0xc0, 0x50)
	buf[0xc0] = 0x14 // add, long form, 2 small constants
	buf[0xc1] = 0x02
	buf[0xc2] = 0x03
	buf[0xc3] = 0x10 // store global 0
	buf[0xc4] = 0xba // quit (0OP #10, operand type omitted)
	z := load(t, buf)

	require.True(t, z.Step(), "add should keep the interpreter running")
	require.EqualValues(t, 5, z.readVariable(16, false))
	require.False(t, z.Step(), "quit should stop the interpreter")
}

func TestStepJeBranchTaken(t *testing.T) {
	buf := minimalStory(0xc0, 0x50)
	// je (2OP #1), long form, 2 small constants, equal values
	buf[0xc0] = 0x01
	buf[0xc1] = 0x07
	buf[0xc2] = 0x07
	// branch byte: branch-on-true, single byte, offset 3 (skip the next instruction)
	buf[0xc3] = 0xc0 | 3
	// an instruction that should be skipped: quit
	buf[0xc4] = 0xba
	// landing instruction: nop (0OP #4)
	buf[0xc5] = 0b10_11_0100
	z := load(t, buf)

	require.True(t, z.Step(), "je should keep running")
	frame := z.callStack.peek()
	require.EqualValues(t, 0xc5, frame.pc, "expected branch to land on the nop")
	require.True(t, z.Step(), "nop should keep running")
}

func TestCallAndReturnStoresResult(t *testing.T) {
	buf := minimalStory(0xc0, 0x50)
	// call_vs (VAR #0), variable form: one large-constant operand (the
	// packed routine address), store the result
	buf[0xc0] = 0b1110_0000                          // VAR form, opcode 0 (call)
	buf[0xc1] = 0b00_11_1111                         // one large-constant operand, rest omitted
	binary.BigEndian.PutUint16(buf[0xc2:0xc4], 0x68) // packed address 0x68 -> byte address 0xd0 (v3 scale x2)
	buf[0xc4] = 0x10                                 // store result to global 0

	// routine at byte address 0xd0: 0 locals, then rtrue
	buf[0xd0] = 0    // local count
	buf[0xd1] = 0xb0 // rtrue (0OP #0, short form, operand type omitted)
	z := load(t, buf)

	require.True(t, z.Step(), "call should keep running")
	require.Equal(t, 2, z.callStack.depth(), "expected a new frame to be pushed")
	require.True(t, z.Step(), "rtrue should keep running")
	require.Equal(t, 1, z.callStack.depth(), "expected the callee frame to have returned")
	require.EqualValues(t, 1, z.readVariable(16, false), "expected global 0 to hold the routine's return value")
}

func TestCallStackPopUnderflowReturnsZero(t *testing.T) {
	z := load(t, minimalStory(0xc0, 0x50))
	frame := z.callStack.peek()

	require.Zero(t, frame.pop(z), "expected 0 from an empty stack pop")
}

func TestCallStackReturnBelowOutermostIsAnError(t *testing.T) {
	s := &CallStack{}
	_, err := s.pop()
	require.Error(t, err)
}
