package zmachine

// decodeInstruction reads one instruction at the current frame PC,
// advancing it past the opcode byte(s) and operands, leaving it pointing
// at the store/branch/text trailer if the opcode has one (spec.md S4.6
// "Instruction layout").
func (z *ZMachine) decodeInstruction(frame *CallStackFrame) Instruction {
	startPC := frame.pc
	opcodeByte := z.readIncPC(frame)

	inst := Instruction{AtPC: startPC, Form: OpcodeForm(opcodeByte >> 6)}

	switch {
	case opcodeByte == 0xbe && z.memory.Version >= 5:
		inst.Form = formExt
		inst.Class = EXT
		inst.Number = z.readIncPC(frame)
		z.decodeVariableOperands(frame, &inst)

	case inst.Form == formVar:
		inst.Number = opcodeByte & 0b1_1111
		if (opcodeByte>>5)&1 == 0 {
			inst.Class = OP2
		} else {
			inst.Class = VAR
		}
		z.decodeVariableOperands(frame, &inst)

	case inst.Form == formShort:
		inst.Number = opcodeByte & 0b1111
		operandType := OperandType((opcodeByte >> 4) & 0b11)
		switch operandType {
		case typeLargeConstant:
			inst.Operands = append(inst.Operands, Operand{Type: operandType, Value: z.readHalfWordIncPC(frame)})
			inst.Class = OP1
		case typeSmallConstant, typeVariable:
			inst.Operands = append(inst.Operands, Operand{Type: operandType, Value: uint16(z.readIncPC(frame))})
			inst.Class = OP1
		case typeOmitted:
			inst.Class = OP0
		}

	default: // long form, always 2OP
		inst.Form = formLong
		inst.Number = opcodeByte & 0b1_1111
		inst.Class = OP2

		op1Type, op2Type := typeSmallConstant, typeSmallConstant
		if (opcodeByte>>6)&1 == 1 {
			op1Type = typeVariable
		}
		if (opcodeByte>>5)&1 == 1 {
			op2Type = typeVariable
		}
		for _, t := range []OperandType{op1Type, op2Type} {
			inst.Operands = append(inst.Operands, Operand{Type: t, Value: uint16(z.readIncPC(frame))})
		}
	}

	return inst
}

// decodeVariableOperands reads a Variable-form operand-type byte (plus a
// second byte for the 8-operand call_vs2/call_vn2 case) and the operands
// it describes.
func (z *ZMachine) decodeVariableOperands(frame *CallStackFrame, inst *Instruction) {
	typeByte := z.readIncPC(frame)
	extendedTypeByte := uint8(0)
	maxOperands := 4

	if inst.Class == VAR && (inst.Number == 12 || inst.Number == 26) {
		extendedTypeByte = z.readIncPC(frame)
		maxOperands = 8
	}

	for i := 0; i < maxOperands; i++ {
		var t OperandType
		if i < 4 {
			t = OperandType((typeByte >> (2 * (3 - i))) & 0b11)
		} else {
			t = OperandType((extendedTypeByte >> (2 * (7 - i))) & 0b11)
		}
		if t == typeOmitted {
			break
		}

		switch t {
		case typeSmallConstant, typeVariable:
			inst.Operands = append(inst.Operands, Operand{Type: t, Value: uint16(z.readIncPC(frame))})
		case typeLargeConstant:
			inst.Operands = append(inst.Operands, Operand{Type: t, Value: z.readHalfWordIncPC(frame)})
		}
	}
}
