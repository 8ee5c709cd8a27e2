package cpu

// execute decodes and runs a single non-prefixed opcode, returning the
// number of cycles it consumed. The 0x40-0xBF block (LD r,r' and the ALU
// A,r group) and the INC/DEC/LD r,d8/16-bit register-pair groups are
// fully regular under the standard 3-bit register-field encoding, so they
// are decoded by masking rather than listed one entry at a time; every
// other opcode is hand decoded.
func (c *CPU) execute(opcode uint8) uint16 {
	switch {
	case opcode == 0x76:
		return c.opHALT()
	case opcode >= 0x40 && opcode <= 0x7F:
		return c.opLDrr(opcode)
	case opcode >= 0x80 && opcode <= 0xBF:
		return c.opALU(opcode)
	case opcode&0xC7 == 0x04:
		return c.opINCr((opcode >> 3) & 0x7)
	case opcode&0xC7 == 0x05:
		return c.opDECr((opcode >> 3) & 0x7)
	case opcode&0xC7 == 0x06:
		return c.opLDrImm((opcode >> 3) & 0x7)
	case opcode&0xCF == 0x01:
		c.wr16((opcode>>4)&0x3, true, c.fetch16())
		return 12
	case opcode&0xCF == 0x03:
		c.wr16((opcode>>4)&0x3, true, c.rr16((opcode>>4)&0x3, true)+1)
		return 8
	case opcode&0xCF == 0x0B:
		c.wr16((opcode>>4)&0x3, true, c.rr16((opcode>>4)&0x3, true)-1)
		return 8
	case opcode&0xCF == 0x09:
		c.addHL(c.rr16((opcode>>4)&0x3, true))
		return 8
	case opcode&0xCF == 0xC5:
		c.push16(c.rr16((opcode>>4)&0x3, false))
		return 16
	case opcode&0xCF == 0xC1:
		c.wr16((opcode>>4)&0x3, false, c.pop16())
		return 12
	case opcode&0xC7 == 0xC7:
		c.push16(c.PC)
		c.PC = uint16(opcode & 0x38)
		return 16
	}

	switch opcode {
	case 0x00:
		return 4
	case 0x02:
		c.bus.Write(c.BC(), c.A)
		return 8
	case 0x0A:
		c.A = c.bus.Read(c.BC())
		return 8
	case 0x12:
		c.bus.Write(c.DE(), c.A)
		return 8
	case 0x1A:
		c.A = c.bus.Read(c.DE())
		return 8
	case 0x22:
		c.bus.Write(c.HL(), c.A)
		c.SetHL(c.HL() + 1)
		return 8
	case 0x2A:
		c.A = c.bus.Read(c.HL())
		c.SetHL(c.HL() + 1)
		return 8
	case 0x32:
		c.bus.Write(c.HL(), c.A)
		c.SetHL(c.HL() - 1)
		return 8
	case 0x3A:
		c.A = c.bus.Read(c.HL())
		c.SetHL(c.HL() - 1)
		return 8
	case 0x08:
		addr := c.fetch16()
		c.bus.Write(addr, uint8(c.SP))
		c.bus.Write(addr+1, uint8(c.SP>>8))
		return 20
	case 0x07:
		c.rlca()
		return 4
	case 0x0F:
		c.rrca()
		return 4
	case 0x17:
		c.rla()
		return 4
	case 0x1F:
		c.rra()
		return 4
	case 0x27:
		c.daa()
		return 4
	case 0x2F:
		c.cpl()
		return 4
	case 0x37:
		c.scf()
		return 4
	case 0x3F:
		c.ccf()
		return 4
	case 0x10:
		c.fetch8() // STOP's second byte, always 0x00
		c.stopped = true
		return 4
	case 0x18:
		offset := int8(c.fetch8())
		c.PC = uint16(int32(c.PC) + int32(offset))
		return 12
	case 0x20, 0x28, 0x30, 0x38:
		offset := int8(c.fetch8())
		if c.condition((opcode >> 3) & 0x3) {
			c.PC = uint16(int32(c.PC) + int32(offset))
			return 12
		}
		return 8
	case 0xC3:
		c.PC = c.fetch16()
		return 16
	case 0xC2, 0xCA, 0xD2, 0xDA:
		addr := c.fetch16()
		if c.condition((opcode >> 3) & 0x3) {
			c.PC = addr
			return 16
		}
		return 12
	case 0xE9:
		c.PC = c.HL()
		return 4
	case 0xCD:
		addr := c.fetch16()
		c.push16(c.PC)
		c.PC = addr
		return 24
	case 0xC4, 0xCC, 0xD4, 0xDC:
		addr := c.fetch16()
		if c.condition((opcode >> 3) & 0x3) {
			c.push16(c.PC)
			c.PC = addr
			return 24
		}
		return 12
	case 0xC9:
		c.PC = c.pop16()
		return 16
	case 0xD9:
		c.PC = c.pop16()
		c.irq.IME = true
		return 16
	case 0xC0, 0xC8, 0xD0, 0xD8:
		if c.condition((opcode >> 3) & 0x3) {
			c.PC = c.pop16()
			return 20
		}
		return 8
	case 0xE0:
		c.bus.Write(0xFF00+uint16(c.fetch8()), c.A)
		return 12
	case 0xF0:
		c.A = c.bus.Read(0xFF00 + uint16(c.fetch8()))
		return 12
	case 0xE2:
		c.bus.Write(0xFF00+uint16(c.C), c.A)
		return 8
	case 0xF2:
		c.A = c.bus.Read(0xFF00 + uint16(c.C))
		return 8
	case 0xEA:
		c.bus.Write(c.fetch16(), c.A)
		return 16
	case 0xFA:
		c.A = c.bus.Read(c.fetch16())
		return 16
	case 0xE8:
		c.SP = c.addSPSigned(int8(c.fetch8()))
		return 16
	case 0xF8:
		c.SetHL(c.addSPSigned(int8(c.fetch8())))
		return 12
	case 0xF9:
		c.SP = c.HL()
		return 8
	case 0xC6:
		c.add8(c.fetch8())
		return 8
	case 0xCE:
		c.adc8(c.fetch8())
		return 8
	case 0xD6:
		c.sub8(c.fetch8())
		return 8
	case 0xDE:
		c.sbc8(c.fetch8())
		return 8
	case 0xE6:
		c.and8(c.fetch8())
		return 8
	case 0xEE:
		c.xor8(c.fetch8())
		return 8
	case 0xF6:
		c.or8(c.fetch8())
		return 8
	case 0xFE:
		c.cp8(c.fetch8())
		return 8
	case 0xF3:
		c.irq.IME = false
		c.pendingIME = false
		return 4
	case 0xFB:
		c.pendingIME = true
		return 4
	case 0xCB:
		return c.executeCB()
	case 0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD:
		return c.illegal(opcode)
	}

	return c.illegal(opcode)
}

// opHALT enters HALT, unless IME is clear and an interrupt is already
// pending: real hardware then suffers the HALT bug, failing to increment
// PC for the next fetch so the byte after HALT is read (and decoded)
// twice.
func (c *CPU) opHALT() uint16 {
	if !c.irq.IME && c.irq.HasPending() {
		c.haltBugPending = true
	} else {
		c.halt = true
	}
	return 4
}

func (c *CPU) opLDrr(opcode uint8) uint16 {
	dst := (opcode >> 3) & 0x7
	src := opcode & 0x7
	value := c.getR(src)
	c.setR(dst, value)
	if dst == 6 || src == 6 {
		return 8
	}
	return 4
}

func (c *CPU) opALU(opcode uint8) uint16 {
	src := opcode & 0x7
	value := c.getR(src)
	switch (opcode >> 3) & 0x7 {
	case 0:
		c.add8(value)
	case 1:
		c.adc8(value)
	case 2:
		c.sub8(value)
	case 3:
		c.sbc8(value)
	case 4:
		c.and8(value)
	case 5:
		c.xor8(value)
	case 6:
		c.or8(value)
	case 7:
		c.cp8(value)
	}
	if src == 6 {
		return 8
	}
	return 4
}

func (c *CPU) opINCr(index uint8) uint16 {
	c.setR(index, c.inc8(c.getR(index)))
	if index == 6 {
		return 12
	}
	return 4
}

func (c *CPU) opDECr(index uint8) uint16 {
	c.setR(index, c.dec8(c.getR(index)))
	if index == 6 {
		return 12
	}
	return 4
}

func (c *CPU) opLDrImm(index uint8) uint16 {
	c.setR(index, c.fetch8())
	if index == 6 {
		return 12
	}
	return 8
}
