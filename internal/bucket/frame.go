// Package bucket implements the on-disk bucket store and the HTTP transport
// slaves use to exchange shuffle data, per spec.md §4.4. The wire format is
// the record frame: a 4-byte big-endian length, the key bytes, a 4-byte
// big-endian length, the value bytes, repeated until EOF. A zero/zero frame
// is the end-of-stream sentinel for streaming producers; sealed buckets may
// omit it and rely on the file's EOF instead.
package bucket

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
)

// ErrSentinel is returned by ReadFrame when it consumes the zero-length
// end-of-stream sentinel rather than a real record.
var ErrSentinel = errors.New("bucket: end-of-stream sentinel")

// WriteFrame appends one record frame to w.
func WriteFrame(w io.Writer, key, value []byte) error {
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(key)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if len(key) > 0 {
		if _, err := w.Write(key); err != nil {
			return err
		}
	}
	binary.BigEndian.PutUint32(hdr[:], uint32(len(value)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if len(value) > 0 {
		if _, err := w.Write(value); err != nil {
			return err
		}
	}
	return nil
}

// WriteSentinel writes the zero-length/zero-length end-of-stream marker.
func WriteSentinel(w io.Writer) error {
	return WriteFrame(w, nil, nil)
}

// ReadFrame reads one record frame from r. It returns io.EOF when r is
// exhausted with no partial frame, and ErrSentinel when the frame read was
// the zero/zero end-of-stream marker (key and value are both nil in that
// case too, so callers should check the error, not the lengths).
func ReadFrame(r io.Reader) (key, value []byte, err error) {
	klen, err := readLen(r)
	if err != nil {
		return nil, nil, err
	}
	key, err = readExact(r, klen)
	if err != nil {
		return nil, nil, err
	}
	vlen, err := readLen(r)
	if err != nil {
		return nil, nil, err
	}
	value, err = readExact(r, vlen)
	if err != nil {
		return nil, nil, err
	}
	if klen == 0 && vlen == 0 {
		return nil, nil, ErrSentinel
	}
	return key, value, nil
}

func readLen(r io.Reader) (uint32, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return 0, io.ErrUnexpectedEOF
		}
		return 0, err
	}
	return binary.BigEndian.Uint32(hdr[:]), nil
}

func readExact(r io.Reader, n uint32) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf, nil
}

// Decode drains a full frame stream into a slice of records, stopping at
// the sentinel (if present) or real EOF. It is the counterpart to Writer
// for readers that want every record at once rather than streaming.
func Decode(r io.Reader) ([]Record, error) {
	br := bufio.NewReader(r)
	var records []Record
	for {
		k, v, err := ReadFrame(br)
		switch err {
		case nil:
			records = append(records, Record{Key: k, Value: v})
		case ErrSentinel:
			return records, nil
		case io.EOF:
			return records, nil
		default:
			return records, err
		}
	}
}

// Record is one decoded key/value frame.
type Record struct {
	Key   []byte
	Value []byte
}
