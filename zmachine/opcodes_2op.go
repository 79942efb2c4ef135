package zmachine

import "encoding/binary"

func init() {
	op2Handlers[1] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // je
		a := inst.Operands[0].Resolve(z)
		branch := false
		for _, b := range inst.Operands[1:] {
			if a == b.Resolve(z) {
				branch = true
			}
		}
		z.handleBranch(frame, branch)
		return true
	}
	op2Handlers[2] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // jl
		a, b := int16(inst.Operands[0].Resolve(z)), int16(inst.Operands[1].Resolve(z))
		z.handleBranch(frame, a < b)
		return true
	}
	op2Handlers[3] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // jg
		a, b := int16(inst.Operands[0].Resolve(z)), int16(inst.Operands[1].Resolve(z))
		z.handleBranch(frame, a > b)
		return true
	}
	op2Handlers[4] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // dec_chk
		v := uint8(inst.Operands[0].Resolve(z))
		newVal := int16(z.readVariable(v, true)) - 1
		z.writeVariable(v, uint16(newVal), true)
		z.handleBranch(frame, newVal < int16(inst.Operands[1].Resolve(z)))
		return true
	}
	op2Handlers[5] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // inc_chk
		v := uint8(inst.Operands[0].Resolve(z))
		newVal := int16(z.readVariable(v, true)) + 1
		z.writeVariable(v, uint16(newVal), true)
		z.handleBranch(frame, newVal > int16(inst.Operands[1].Resolve(z)))
		return true
	}
	op2Handlers[6] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // jin
		obj := inst.Operands[0].Resolve(z)
		z.handleBranch(frame, z.objects.Parent(obj) == inst.Operands[1].Resolve(z))
		return true
	}
	op2Handlers[7] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // test
		bitmap, flags := inst.Operands[0].Resolve(z), inst.Operands[1].Resolve(z)
		z.handleBranch(frame, bitmap&flags == flags)
		return true
	}
	op2Handlers[8] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // or
		z.writeVariable(z.readIncPC(frame), inst.Operands[0].Resolve(z)|inst.Operands[1].Resolve(z), false)
		return true
	}
	op2Handlers[9] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // and
		z.writeVariable(z.readIncPC(frame), inst.Operands[0].Resolve(z)&inst.Operands[1].Resolve(z), false)
		return true
	}
	op2Handlers[10] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // test_attr
		obj, bit := inst.Operands[0].Resolve(z), inst.Operands[1].Resolve(z)
		z.handleBranch(frame, z.objects.Attribute(obj, bit))
		return true
	}
	op2Handlers[11] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // set_attr
		obj, bit := inst.Operands[0].Resolve(z), inst.Operands[1].Resolve(z)
		z.objects.SetAttribute(obj, bit, true)
		return true
	}
	op2Handlers[12] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // clear_attr
		obj, bit := inst.Operands[0].Resolve(z), inst.Operands[1].Resolve(z)
		z.objects.SetAttribute(obj, bit, false)
		return true
	}
	op2Handlers[13] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // store
		v := uint8(inst.Operands[0].Resolve(z))
		z.writeVariable(v, inst.Operands[1].Resolve(z), true)
		return true
	}
	op2Handlers[14] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // insert_obj
		z.objects.Insert(inst.Operands[0].Resolve(z), inst.Operands[1].Resolve(z))
		return true
	}
	op2Handlers[15] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // loadw
		addr := uint32(inst.Operands[0].Resolve(z)) + 2*uint32(inst.Operands[1].Resolve(z))
		z.writeVariable(z.readIncPC(frame), z.memory.ReadWord(addr), false)
		return true
	}
	op2Handlers[16] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // loadb
		addr := uint32(inst.Operands[0].Resolve(z)) + uint32(inst.Operands[1].Resolve(z))
		z.writeVariable(z.readIncPC(frame), uint16(z.memory.ReadByte(addr)), false)
		return true
	}
	op2Handlers[17] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // get_prop
		obj, propNum := inst.Operands[0].Resolve(z), uint8(inst.Operands[1].Resolve(z))
		data, _, found := z.objects.Property(obj, propNum)
		var value uint16
		switch {
		case !found:
			value = z.objects.DefaultProperty(propNum)
		case len(data) == 1:
			value = uint16(data[0])
		case len(data) >= 2:
			value = binary.BigEndian.Uint16(data[:2])
		}
		z.writeVariable(z.readIncPC(frame), value, false)
		return true
	}
	op2Handlers[18] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // get_prop_addr
		obj, propNum := inst.Operands[0].Resolve(z), uint8(inst.Operands[1].Resolve(z))
		_, addr, found := z.objects.Property(obj, propNum)
		if !found {
			addr = 0
		}
		z.writeVariable(z.readIncPC(frame), uint16(addr), false)
		return true
	}
	op2Handlers[19] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // get_next_prop
		obj, propNum := inst.Operands[0].Resolve(z), uint8(inst.Operands[1].Resolve(z))
		z.writeVariable(z.readIncPC(frame), uint16(z.objects.FollowingProperty(obj, propNum)), false)
		return true
	}
	op2Handlers[20] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // add
		z.writeVariable(z.readIncPC(frame), inst.Operands[0].Resolve(z)+inst.Operands[1].Resolve(z), false)
		return true
	}
	op2Handlers[21] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // sub
		z.writeVariable(z.readIncPC(frame), inst.Operands[0].Resolve(z)-inst.Operands[1].Resolve(z), false)
		return true
	}
	op2Handlers[22] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // mul
		z.writeVariable(z.readIncPC(frame), inst.Operands[0].Resolve(z)*inst.Operands[1].Resolve(z), false)
		return true
	}
	op2Handlers[23] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // div
		num, denom := int16(inst.Operands[0].Resolve(z)), int16(inst.Operands[1].Resolve(z))
		if denom == 0 {
			z.runtimeError("division by zero at 0x%x", inst.AtPC)
			return false
		}
		z.writeVariable(z.readIncPC(frame), uint16(num/denom), false)
		return true
	}
	op2Handlers[24] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // mod
		num, denom := int16(inst.Operands[0].Resolve(z)), int16(inst.Operands[1].Resolve(z))
		if denom == 0 {
			z.runtimeError("modulo by zero at 0x%x", inst.AtPC)
			return false
		}
		z.writeVariable(z.readIncPC(frame), uint16(num%denom), false)
		return true
	}
	op2Handlers[25] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // call_2s
		z.call(inst, routineFunction)
		return true
	}
	op2Handlers[26] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // call_2n
		z.call(inst, routineProcedure)
		return true
	}
	op2Handlers[27] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // set_colour
		// Foreground/background colour is accepted and ignored: this
		// interpreter targets a plain terminal with no colour palette.
		return true
	}
	op2Handlers[28] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // throw
		targetDepth := inst.Operands[1].Resolve(z)
		for z.callStack.depth() > int(targetDepth) {
			if _, err := z.callStack.pop(); err != nil {
				break
			}
		}
		z.doReturn(inst.Operands[0].Resolve(z))
		return true
	}
}
