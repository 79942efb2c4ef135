package zmachine

import (
	"strconv"
	"time"

	"github.com/oliverhutch/goz/dictionary"
	"github.com/oliverhutch/goz/ztable"
)

func init() {
	varHandlers[0] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // call / call_vs
		z.call(inst, routineFunction)
		return true
	}
	varHandlers[1] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // storew
		addr := uint32(inst.Operands[0].Resolve(z)) + 2*uint32(inst.Operands[1].Resolve(z))
		_ = z.memory.WriteWord(addr, inst.Operands[2].Resolve(z))
		return true
	}
	varHandlers[2] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // storeb
		addr := uint32(inst.Operands[0].Resolve(z)) + uint32(inst.Operands[1].Resolve(z))
		_ = z.memory.WriteByte(addr, uint8(inst.Operands[2].Resolve(z)))
		return true
	}
	varHandlers[3] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // put_prop
		obj, propNum, value := inst.Operands[0].Resolve(z), uint8(inst.Operands[1].Resolve(z)), inst.Operands[2].Resolve(z)
		z.objects.SetProperty(obj, propNum, value)
		return true
	}
	varHandlers[4] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // sread / aread
		z.sread(frame, inst)
		return true
	}
	varHandlers[5] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // print_char
		chr := uint8(inst.Operands[0].Resolve(z))
		if chr != 0 {
			z.printChar(rune(chr))
		}
		return true
	}
	varHandlers[6] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // print_num
		z.appendText(strconv.Itoa(int(int16(inst.Operands[0].Resolve(z)))))
		return true
	}
	varHandlers[7] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // random
		n := int16(inst.Operands[0].Resolve(z))
		var result uint16
		switch {
		case n < 0:
			z.reseedRNG(int64(-n))
		case n == 0:
			z.reseedRNG(0)
		default:
			result = uint16(z.rng.Int31n(int32(n))) + 1
		}
		z.writeVariable(z.readIncPC(frame), result, false)
		return true
	}
	varHandlers[8] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // push
		frame.push(inst.Operands[0].Resolve(z))
		return true
	}
	varHandlers[9] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // pull
		v := uint8(inst.Operands[0].Resolve(z))
		z.writeVariable(v, frame.pop(z), true)
		return true
	}
	varHandlers[10] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // split_window
		lines := int(inst.Operands[0].Resolve(z))
		z.upperWindowHeight = lines
		z.ui.SplitWindow(lines)
		return true
	}
	varHandlers[11] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // set_window
		lower := inst.Operands[0].Resolve(z) == 0
		z.activeWindowLower = lower
		z.ui.SetActiveWindow(lower)
		return true
	}
	varHandlers[12] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // call_vs2
		z.call(inst, routineFunction)
		return true
	}
	varHandlers[13] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // erase_window
		window := int16(inst.Operands[0].Resolve(z))
		if window == -1 {
			z.activeWindowLower = true
			z.upperWindowHeight = 0
		}
		z.ui.EraseWindow(int(window))
		return true
	}
	varHandlers[14] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // erase_line
		z.ui.EraseLine()
		return true
	}
	varHandlers[15] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // set_cursor
		line, col := int(inst.Operands[0].Resolve(z)), int(inst.Operands[1].Resolve(z))
		if !z.activeWindowLower {
			z.cursorLine, z.cursorCol = line, col
			z.ui.SetCursor(line, col)
		}
		return true
	}
	varHandlers[16] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // get_cursor
		addr := uint32(inst.Operands[0].Resolve(z))
		_ = z.memory.WriteWord(addr, uint16(z.cursorLine))
		_ = z.memory.WriteWord(addr+2, uint16(z.cursorCol))
		return true
	}
	varHandlers[17] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // set_text_style
		style := TextStyle(inst.Operands[0].Resolve(z))
		z.ui.SetTextStyle(style)
		return true
	}
	varHandlers[18] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // buffer_mode
		// Line wrapping is left to the front end's own renderer; nothing
		// for the core to track.
		return true
	}
	varHandlers[19] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // output_stream
		stream := int16(inst.Operands[0].Resolve(z))
		switch stream {
		case 1, -1:
			z.streams.screen = stream > 0
		case 2, -2:
			z.streams.transcript = stream > 0
		case 3:
			tableAddr := uint32(inst.Operands[1].Resolve(z))
			z.streams.memory = append(z.streams.memory, memoryStream{lengthWordAddr: tableAddr, cursor: tableAddr + 2})
		case -3:
			if z.streams.memoryActive() {
				cur := z.streams.memory[len(z.streams.memory)-1]
				_ = z.memory.WriteWord(cur.lengthWordAddr, uint16(cur.cursor-cur.lengthWordAddr-2))
				z.streams.memory = z.streams.memory[:len(z.streams.memory)-1]
			}
		case 4, -4:
			z.streams.command = stream > 0
		}
		return true
	}
	varHandlers[20] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // input_stream
		// Reading recorded command scripts back in isn't supported; the
		// player is always the input source.
		return true
	}
	varHandlers[21] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // sound_effect
		number := int(inst.Operands[0].Resolve(z))
		effect, volume, repeats := 2, 255, 1
		if len(inst.Operands) > 1 {
			effect = int(inst.Operands[1].Resolve(z))
		}
		if len(inst.Operands) > 2 {
			packed := inst.Operands[2].Resolve(z)
			volume = int(packed & 0xff)
			repeats = int(packed >> 8)
			if repeats == 0 {
				repeats = 1
			}
		}
		z.ui.SoundEffect(number, effect, volume, repeats)
		return true
	}
	varHandlers[22] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // read_char
		code, err := z.ui.ReadChar()
		if err != nil {
			z.runtimeError("read_char: %s", err)
			code = 0
		}
		z.writeVariable(z.readIncPC(frame), uint16(code), false)
		return true
	}
	varHandlers[23] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // scan_table
		test, tableAddr, length := inst.Operands[0].Resolve(z), inst.Operands[1].Resolve(z), inst.Operands[2].Resolve(z)
		form := uint16(0x82)
		if len(inst.Operands) == 4 {
			form = inst.Operands[3].Resolve(z)
		}
		result := ztable.Scan(z.memory, test, uint32(tableAddr), length, form)
		z.writeVariable(z.readIncPC(frame), uint16(result), false)
		z.handleBranch(frame, result != 0)
		return true
	}
	varHandlers[24] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // not
		z.writeVariable(z.readIncPC(frame), ^inst.Operands[0].Resolve(z), false)
		return true
	}
	varHandlers[25] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // call_vn
		z.call(inst, routineProcedure)
		return true
	}
	varHandlers[26] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // call_vn2
		z.call(inst, routineProcedure)
		return true
	}
	varHandlers[27] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // tokenise
		text, parseBuffer := inst.Operands[0].Resolve(z), inst.Operands[1].Resolve(z)
		dict := z.dictionary
		skipUnknown := false
		if len(inst.Operands) > 2 {
			if dictAddr := inst.Operands[2].Resolve(z); dictAddr != 0 {
				dict = dictionary.LoadAt(z.memory, z.alphabets, uint32(dictAddr))
			}
		}
		if len(inst.Operands) > 3 {
			skipUnknown = inst.Operands[3].Resolve(z) != 0
		}
		z.tokenise(uint32(text), uint32(parseBuffer), dict, skipUnknown)
		return true
	}
	varHandlers[29] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // copy_table
		first, second, size := inst.Operands[0].Resolve(z), inst.Operands[1].Resolve(z), int16(inst.Operands[2].Resolve(z))
		ztable.Copy(z.memory, uint32(first), uint32(second), size)
		return true
	}
	varHandlers[30] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // print_table
		addr, width := inst.Operands[0].Resolve(z), inst.Operands[1].Resolve(z)
		height, skip := uint16(1), uint16(0)
		if len(inst.Operands) > 2 {
			height = inst.Operands[2].Resolve(z)
		}
		if len(inst.Operands) > 3 {
			skip = inst.Operands[3].Resolve(z)
		}
		ztable.Print(z.memory, uint32(addr), width, height, skip,
			func(b byte) { z.printChar(rune(b)) },
			func() { z.appendText("\n") })
		return true
	}
	varHandlers[31] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // check_arg_count
		arg := inst.Operands[0].Resolve(z)
		z.handleBranch(frame, arg <= uint16(frame.numValuesPassed))
		return true
	}
}

// reseedRNG implements `random`'s seed-control special case: a zero
// argument seeds from the clock (true randomness), a negative argument
// seeds deterministically from its magnitude (used by test suites that
// need reproducible "random" sequences).
func (z *ZMachine) reseedRNG(seed int64) {
	if seed == 0 {
		z.rng.Seed(time.Now().UnixNano())
	} else {
		z.rng.Seed(seed)
	}
}
