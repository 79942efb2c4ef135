package zmachine

// undoState is the single slot `save_undo`/`restore_undo` operate on: an
// in-memory snapshot of dynamic memory and the call stack at the moment
// of the most recent save_undo call (spec.md S6.5 - disk persistence is
// out of scope, but the in-memory single-slot undo stack is not).
type undoState struct {
	dynamicMemory []uint8
	callStack     CallStack
}

func (z *ZMachine) saveUndo() {
	z.undo = &undoState{
		dynamicMemory: z.memory.Snapshot(),
		callStack:     z.callStack.copy(),
	}
}

// restoreUndo restores the most recent save_undo snapshot, returning
// false if there was none to restore.
func (z *ZMachine) restoreUndo() bool {
	if z.undo == nil {
		return false
	}
	z.memory.Restore(z.undo.dynamicMemory)
	z.callStack = z.undo.callStack.copy()
	return true
}
