package zmachine

func init() {
	extHandlers[2] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // log_shift
		num := inst.Operands[0].Resolve(z)
		places := int16(inst.Operands[1].Resolve(z))
		z.writeVariable(z.readIncPC(frame), shift(num, places, z), false)
		return true
	}
	extHandlers[3] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // art_shift
		num := int16(inst.Operands[0].Resolve(z))
		places := int16(inst.Operands[1].Resolve(z))
		var result int16
		if places >= 0 {
			result = num << uint16(wrapShiftAmount(places, z))
		} else {
			result = num >> uint16(wrapShiftAmount(-places, z))
		}
		z.writeVariable(z.readIncPC(frame), uint16(result), false)
		return true
	}
	extHandlers[9] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // save_undo
		z.saveUndo()
		z.writeVariable(z.readIncPC(frame), 1, false)
		return true
	}
	extHandlers[10] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // restore_undo
		ok := z.restoreUndo()
		frame = z.callStack.peek()
		result := uint16(0)
		if ok {
			result = 2
		}
		z.writeVariable(z.readIncPC(frame), result, false)
		return true
	}
	extHandlers[11] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // print_unicode
		z.printChar(rune(inst.Operands[0].Resolve(z)))
		return true
	}
	extHandlers[12] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // check_unicode
		// This interpreter can both print and read any rune the terminal
		// accepts, so every non-zero code is reported fully supported.
		chr := inst.Operands[0].Resolve(z)
		result := uint16(0)
		if chr != 0 {
			result = 0b11
		}
		z.writeVariable(z.readIncPC(frame), result, false)
		return true
	}
	extHandlers[13] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // set_true_colour
		// Accepted and ignored, as with set_colour: no colour palette on
		// a plain terminal front end.
		return true
	}
}

// shift implements log_shift's unsigned left/right shift. A places
// magnitude at or above the word width has no single well-defined
// result on real hardware; spec.md's chosen behaviour is to warn and
// wrap the amount modulo 16 rather than panic.
func shift(num uint16, places int16, z *ZMachine) uint16 {
	if places >= 0 {
		return num << wrapShiftAmount(places, z)
	}
	return num >> wrapShiftAmount(-places, z)
}

func wrapShiftAmount(places int16, z *ZMachine) uint16 {
	if places >= 16 {
		z.warn("shift amount %d exceeds word width, wrapping modulo 16", places)
		return uint16(places) % 16
	}
	return uint16(places)
}
