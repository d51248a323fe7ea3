// services/camctl/mjpeg_test.go
package camctl

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"camdevice-go/errcode"
)

func TestFramePartRoundTrip(t *testing.T) {
	payloads := [][]byte{
		[]byte("x"),
		bytes.Repeat([]byte{0xFF, 0xD8, 0x0D, 0x0A}, 300), // binary with CRLF bytes
		[]byte("last frame"),
	}

	var buf bytes.Buffer
	for _, p := range payloads {
		if err := WriteFramePart(&buf, p); err != nil {
			t.Fatalf("WriteFramePart: %v", err)
		}
	}

	pr := NewPartReader(&buf)
	for i, want := range payloads {
		got, err := pr.Next()
		if err != nil {
			t.Fatalf("Next %d: %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("part %d: got %d bytes, want %d", i, len(got), len(want))
		}
	}
	if _, err := pr.Next(); err != io.EOF {
		t.Errorf("after last part: err = %v, want EOF", err)
	}
}

func TestFramePartWireFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFramePart(&buf, []byte("abc")); err != nil {
		t.Fatalf("WriteFramePart: %v", err)
	}
	want := "\r\n--frame\r\nContent-Type: image/jpeg\r\nContent-Length: 3\r\n\r\nabc"
	if got := buf.String(); got != want {
		t.Errorf("wire bytes = %q, want %q", got, want)
	}
}

func TestPartReaderMissingLength(t *testing.T) {
	in := "\r\n--frame\r\nContent-Type: image/jpeg\r\n\r\nabc"
	pr := NewPartReader(strings.NewReader(in))
	_, err := pr.Next()
	if errcode.Of(err) != errcode.InvalidParams {
		t.Errorf("missing length: err = %v, want invalid_params", err)
	}
}

func TestPartReaderTruncatedPayload(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFramePart(&buf, []byte("complete")); err != nil {
		t.Fatalf("WriteFramePart: %v", err)
	}
	full := buf.Bytes()

	pr := NewPartReader(bytes.NewReader(full[:len(full)-3]))
	if _, err := pr.Next(); err == nil {
		t.Error("expected error for truncated payload")
	}
}
