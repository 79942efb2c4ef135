package zmachine

import "github.com/oliverhutch/goz/zstring"

func init() {
	op1Handlers[0] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // jz
		z.handleBranch(frame, inst.Operands[0].Resolve(z) == 0)
		return true
	}
	op1Handlers[1] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // get_sibling
		obj := inst.Operands[0].Resolve(z)
		sibling := z.objects.Sibling(obj)
		z.writeVariable(z.readIncPC(frame), sibling, false)
		z.handleBranch(frame, sibling != 0)
		return true
	}
	op1Handlers[2] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // get_child
		obj := inst.Operands[0].Resolve(z)
		child := z.objects.Child(obj)
		z.writeVariable(z.readIncPC(frame), child, false)
		z.handleBranch(frame, child != 0)
		return true
	}
	op1Handlers[3] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // get_parent
		obj := inst.Operands[0].Resolve(z)
		z.writeVariable(z.readIncPC(frame), z.objects.Parent(obj), false)
		return true
	}
	op1Handlers[4] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // get_prop_len
		addr := inst.Operands[0].Resolve(z)
		z.writeVariable(z.readIncPC(frame), uint16(z.propertyLengthAt(uint32(addr))), false)
		return true
	}
	op1Handlers[5] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // inc
		v := uint8(inst.Operands[0].Resolve(z))
		z.writeVariable(v, z.readVariable(v, true)+1, true)
		return true
	}
	op1Handlers[6] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // dec
		v := uint8(inst.Operands[0].Resolve(z))
		z.writeVariable(v, z.readVariable(v, true)-1, true)
		return true
	}
	op1Handlers[7] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // print_addr
		addr := inst.Operands[0].Resolve(z)
		text, _, err := zstring.Decode(z.memory, uint32(addr), z.alphabets)
		if err != nil {
			z.runtimeError("print_addr: %s", err)
			return false
		}
		z.appendText(text)
		return true
	}
	op1Handlers[8] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // call_1s
		z.call(inst, routineFunction)
		return true
	}
	op1Handlers[9] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // remove_obj
		z.objects.Detach(inst.Operands[0].Resolve(z))
		return true
	}
	op1Handlers[10] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // print_obj
		z.appendText(z.objects.ShortName(inst.Operands[0].Resolve(z)))
		return true
	}
	op1Handlers[11] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // ret
		z.doReturn(inst.Operands[0].Resolve(z))
		return true
	}
	op1Handlers[12] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // jump
		offset := int16(inst.Operands[0].Resolve(z))
		frame.pc = uint32(int64(frame.pc) + int64(offset) - 2)
		return true
	}
	op1Handlers[13] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // print_paddr
		packed := inst.Operands[0].Resolve(z)
		addr := z.memory.UnpackString(uint32(packed))
		text, _, err := zstring.Decode(z.memory, addr, z.alphabets)
		if err != nil {
			z.runtimeError("print_paddr: %s", err)
			return false
		}
		z.appendText(text)
		return true
	}
	op1Handlers[14] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // load
		v := uint8(inst.Operands[0].Resolve(z))
		z.writeVariable(z.readIncPC(frame), z.readVariable(v, true), false)
		return true
	}
	op1Handlers[15] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // not (v1-4) / call_1n (v5+)
		if z.memory.Version < 5 {
			v := inst.Operands[0].Resolve(z)
			z.writeVariable(z.readIncPC(frame), ^v, false)
		} else {
			z.call(inst, routineProcedure)
		}
		return true
	}
}

// propertyLengthAt returns the length of the property whose data starts
// at addr, used by get_prop_len which is handed a data address rather
// than an (object, property) pair. addr == 0 is a documented special
// case meaning "no property", returning 0.
func (z *ZMachine) propertyLengthAt(addr uint32) uint8 {
	if addr == 0 {
		return 0
	}
	return z.objects.PropertyLengthAtDataAddress(addr)
}
