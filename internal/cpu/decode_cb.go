package cpu

// executeCB decodes a CB-prefixed opcode. The encoding is fully regular —
// bits 7:6 select the operation group, bits 5:3 select the sub-operation
// (rotate/shift kind, or bit index for BIT/RES/SET) and bits 2:0 select
// the register operand — so it is computed directly rather than hand
// tabulated, the same regularity the main table's LD r,r' block exploits.
func (c *CPU) executeCB() uint16 {
	opcode := c.fetch8()
	reg := opcode & 0x7
	bitIndex := (opcode >> 3) & 0x7
	group := opcode >> 6

	cycles := uint16(8)
	if reg == 6 {
		cycles = 16
		if group == 1 {
			cycles = 12 // BIT n,(HL) skips the writeback
		}
	}

	switch group {
	case 0:
		value := c.getR(reg)
		switch bitIndex {
		case 0:
			value = c.rlc(value)
		case 1:
			value = c.rrc(value)
		case 2:
			value = c.rl(value)
		case 3:
			value = c.rr(value)
		case 4:
			value = c.sla(value)
		case 5:
			value = c.sra(value)
		case 6:
			value = c.swap(value)
		case 7:
			value = c.srl(value)
		}
		c.setR(reg, value)
	case 1:
		c.bit(bitIndex, c.getR(reg))
	case 2:
		c.setR(reg, resBit(bitIndex, c.getR(reg)))
	case 3:
		c.setR(reg, setBit(bitIndex, c.getR(reg)))
	}

	return 4 + cycles
}
