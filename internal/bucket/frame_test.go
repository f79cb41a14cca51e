package bucket

import (
	"bytes"
	"io"
	"testing"
)

func TestWriteReadFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, []byte("key"), []byte("value")); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	key, value, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if string(key) != "key" || string(value) != "value" {
		t.Fatalf("ReadFrame = %q, %q", key, value)
	}
}

func TestWriteReadFrameEmptyKeyOrValue(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, nil, []byte("value")); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	key, value, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if len(key) != 0 || string(value) != "value" {
		t.Fatalf("ReadFrame = %q, %q", key, value)
	}
}

func TestReadFrameSentinel(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSentinel(&buf); err != nil {
		t.Fatalf("WriteSentinel: %v", err)
	}
	_, _, err := ReadFrame(&buf)
	if err != ErrSentinel {
		t.Fatalf("ReadFrame = %v, want ErrSentinel", err)
	}
}

func TestReadFrameEOFWithNoPartialFrame(t *testing.T) {
	_, _, err := ReadFrame(bytes.NewReader(nil))
	if err != io.EOF {
		t.Fatalf("ReadFrame on empty reader = %v, want io.EOF", err)
	}
}

func TestReadFrameTruncatedFrameIsUnexpectedEOF(t *testing.T) {
	var buf bytes.Buffer
	WriteFrame(&buf, []byte("key"), []byte("value"))
	truncated := buf.Bytes()[:6] // full key length header, partial key bytes

	_, _, err := ReadFrame(bytes.NewReader(truncated))
	if err != io.ErrUnexpectedEOF {
		t.Fatalf("ReadFrame on truncated frame = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestDecodeStopsAtSentinelAndIgnoresTrailingData(t *testing.T) {
	var buf bytes.Buffer
	WriteFrame(&buf, []byte("a"), []byte("1"))
	WriteFrame(&buf, []byte("b"), []byte("2"))
	WriteSentinel(&buf)
	buf.WriteString("garbage-after-sentinel")

	records, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Decode returned %d records, want 2", len(records))
	}
	if string(records[0].Key) != "a" || string(records[1].Key) != "b" {
		t.Fatalf("Decode order wrong: %+v", records)
	}
}

func TestDecodeWithoutSentinelReliesOnEOF(t *testing.T) {
	var buf bytes.Buffer
	WriteFrame(&buf, []byte("a"), []byte("1"))
	WriteFrame(&buf, []byte("b"), []byte("2"))

	records, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Decode returned %d records, want 2", len(records))
	}
}
