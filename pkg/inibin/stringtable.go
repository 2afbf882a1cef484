package inibin

import (
	"github.com/kaitai-io/kaitai_struct_go_runtime/kaitai"
)

// readStringTable decodes the string table block: keys, u16 offsets, then
// the string region of regionLen bytes. Each offset resolves to the bytes up
// to the next null within the region, or to the end of the region.
func readStringTable(c *Cursor, regionLen int) ([]int32, []any, error) {
	count, err := c.readCount()
	if err != nil {
		return nil, nil, err
	}
	keys, err := c.readKeys(count)
	if err != nil {
		return nil, nil, err
	}
	offsets, err := c.ReadScalars(KindU16, count)
	if err != nil {
		return nil, nil, err
	}
	region, err := c.ReadExact(regionLen)
	if err != nil {
		return nil, nil, err
	}

	values := make([]any, count)
	for i, off := range offsets {
		values[i] = resolveString(region, int(off.(uint16)))
	}
	return keys, values, nil
}

func resolveString(region []byte, offset int) string {
	if offset >= len(region) {
		return ""
	}
	return string(kaitai.BytesTerminate(region[offset:], 0, false))
}
