package zmachine

func init() {
	op0Handlers[0] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // rtrue
		z.doReturn(1)
		return true
	}
	op0Handlers[1] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // rfalse
		z.doReturn(0)
		return true
	}
	op0Handlers[2] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // print
		z.appendText(z.decodeText(frame))
		return true
	}
	op0Handlers[3] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // print_ret
		z.appendText(z.decodeText(frame))
		z.appendText("\n")
		z.doReturn(1)
		return true
	}
	op0Handlers[4] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // nop
		return true
	}
	op0Handlers[5] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // save (legacy v1-4 form)
		// No persistent save in this environment; report failure (branch not
		// taken in v1-3, store 0 in v4).
		if z.memory.Version < 4 {
			z.handleBranch(frame, false)
		} else {
			z.writeVariable(z.readIncPC(frame), 0, false)
		}
		return true
	}
	op0Handlers[6] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // restore (legacy v1-4 form)
		if z.memory.Version < 4 {
			z.handleBranch(frame, false)
		} else {
			z.writeVariable(z.readIncPC(frame), 0, false)
		}
		return true
	}
	op0Handlers[7] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // restart
		z.restart()
		return true
	}
	op0Handlers[8] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // ret_popped
		v := frame.pop(z)
		z.doReturn(v)
		return true
	}
	op0Handlers[9] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // pop / catch
		if z.memory.Version >= 5 {
			z.writeVariable(z.readIncPC(frame), uint16(z.callStack.depth()), false) // catch: the call-stack depth stands in for a frame pointer
		} else {
			_ = frame.pop(z)
		}
		return true
	}
	op0Handlers[10] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // quit
		return false
	}
	op0Handlers[11] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // new_line
		z.appendText("\n")
		return true
	}
	op0Handlers[12] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // show_status (v3 explicit status redraw)
		z.readStatusBar()
		return true
	}
	op0Handlers[13] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // verify
		z.handleBranch(frame, z.memory.Verify())
		return true
	}
	op0Handlers[15] = func(z *ZMachine, frame *CallStackFrame, inst Instruction) bool { // piracy
		z.handleBranch(frame, true) // interpreters are asked to be gullible
		return true
	}
}
