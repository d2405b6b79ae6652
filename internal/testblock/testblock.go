// Package testblock implements mktest's per-chunk payload: a serial-number
// header followed by the serial number splatted across the rest of the
// block as a repeated big-endian uint32 (spec §6 "Auxiliary tool mktest").
package testblock

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// HeaderLen is the fixed-width header at the front of each block: a
// left-justified 12-character ASCII decimal field, three NUL bytes, then
// a newline. Ported byte-for-byte from the original's
// sprintf(buf, "%-12u%c%c%c\n", serial, 0, 0, 0) rather than re-derived
// from spec.md's looser "padded with NULs" summary (SPEC_FULL.md).
const HeaderLen = 16

// Fill writes serial's header and big-endian repeated payload into buf, as
// mktest's fillBuffer does for each CHUNK-sized block it emits.
func Fill(buf []byte, serial uint32) {
	for off := 0; off+4 <= len(buf); off += 4 {
		binary.BigEndian.PutUint32(buf[off:off+4], serial)
	}

	header := make([]byte, HeaderLen)
	text := strconv.FormatUint(uint64(serial), 10)
	copy(header, text)
	for i := len(text); i < 12; i++ {
		header[i] = ' '
	}
	// header[12:15] stay NUL.
	header[15] = '\n'

	copy(buf, header)
}

// Serial extracts the serial number a prior call to Fill wrote into the
// start of block.
func Serial(block []byte) (uint32, error) {
	if len(block) < HeaderLen {
		return 0, errors.New("block shorter than testblock header")
	}
	text := strings.TrimRight(string(block[:12]), " \x00")
	n, err := strconv.ParseUint(text, 10, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid serial header %q", block[:12])
	}
	return uint32(n), nil
}
