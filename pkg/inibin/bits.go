package inibin

// UnpackBits reads count booleans packed eight per byte, most significant
// bit first. It consumes exactly ceil(count/8) bytes; unused low bits of the
// final byte are skipped.
func UnpackBits(c *Cursor, count int) ([]bool, error) {
	if err := c.need((count + 7) / 8); err != nil {
		return nil, err
	}

	out := make([]bool, count)
	for i := range out {
		bit, err := c.stream.ReadBitsIntBe(1)
		if err != nil {
			return nil, err
		}
		out[i] = bit == 1
	}
	c.stream.AlignToByte()
	return out, nil
}

func readBools(c *Cursor, count int) ([]any, error) {
	bits, err := UnpackBits(c, count)
	if err != nil {
		return nil, err
	}
	values := make([]any, len(bits))
	for i, b := range bits {
		values[i] = b
	}
	return values, nil
}
