package cube

import (
	"encoding/binary"
	"errors"
	"io"
)

// maxFrameSize caps a single native-protocol frame. The server never sends
// frames anywhere near this; anything larger means a corrupt length prefix.
const maxFrameSize = 100 << 20

// readExact fills a buffer of n bytes from r, treating a short read as a
// terminal error. EOF before any byte and EOF after a partial read are both
// ErrIo but carry different messages, so callers can tell "peer closed
// between frames" from "peer closed mid-frame".
func readExact(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF {
			return nil, wrapError(ErrIo, err, "connection closed by peer")
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, wrapError(ErrIo, err, "connection closed mid-frame")
		}
		return nil, wrapError(ErrIo, err, "read failed")
	}
	return buf, nil
}

func writeExact(w io.Writer, buf []byte) error {
	if _, err := w.Write(buf); err != nil {
		return wrapError(ErrIo, err, "write failed")
	}
	return nil
}

// readMessage reads one length-prefixed frame: a big-endian uint32 length
// followed by exactly that many payload bytes.
func readMessage(r io.Reader) ([]byte, error) {
	hdr, err := readExact(r, 4)
	if err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(hdr)
	if length == 0 || length > maxFrameSize {
		return nil, newError(ErrProtocol, "invalid frame length %d", length)
	}
	return readExact(r, int(length))
}

// writeMessage prepends the big-endian length prefix and writes the frame.
func writeMessage(w io.Writer, payload []byte) error {
	if len(payload) == 0 || len(payload) > maxFrameSize {
		return newError(ErrProtocol, "invalid frame length %d", len(payload))
	}
	hdr := make([]byte, 4)
	binary.BigEndian.PutUint32(hdr, uint32(len(payload)))
	if err := writeExact(w, hdr); err != nil {
		return err
	}
	return writeExact(w, payload)
}
