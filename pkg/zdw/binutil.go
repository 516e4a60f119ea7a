package zdw

import "io"

// writeUintLE writes the low width bytes of v, little-endian. width must
// be in [1,8]. Grounded on the scratch-buffer binary.LittleEndian style
// used throughout the retrieval pack's columnar formats (e.g.
// other_examples/cardinalhq-lakerunner__spillcodec.go).
func writeUintLE(w io.Writer, v uint64, width int) error {
	var buf [8]byte
	for i := 0; i < width; i++ {
		buf[i] = byte(v >> (8 * i))
	}
	_, err := w.Write(buf[:width])
	return err
}

// readUintLE reads width little-endian bytes into a uint64.
func readUintLE(r io.Reader, width int) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:width]); err != nil {
		return 0, err
	}
	var v uint64
	for i := 0; i < width; i++ {
		v |= uint64(buf[i]) << (8 * i)
	}
	return v, nil
}

func writeByte(w io.Writer, b byte) error {
	_, err := w.Write([]byte{b})
	return err
}

func readByte(r io.Reader) (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}
