// services/camctl/mjpeg.go
package camctl

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"camdevice-go/errcode"
)

// Boundary delimits frames on the live stream and in recording files. The
// persisted format mirrors the wire format so one framing routine serves
// both.
const Boundary = "frame"

// WriteFramePart writes one self-delimited JPEG part:
//
//	\r\n--frame\r\nContent-Type: image/jpeg\r\nContent-Length: <n>\r\n\r\n<n bytes>
//
// The explicit length lets a receiver demultiplex frames without an end
// marker.
func WriteFramePart(w io.Writer, jpeg []byte) error {
	if _, err := fmt.Fprintf(w,
		"\r\n--%s\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n",
		Boundary, len(jpeg)); err != nil {
		return err
	}
	_, err := w.Write(jpeg)
	return err
}

// PartReader parses a stream of frame parts back into payloads. Used by the
// recording toolchain and tests to verify each record independently by its
// length header.
type PartReader struct {
	br *bufio.Reader
}

func NewPartReader(r io.Reader) *PartReader {
	return &PartReader{br: bufio.NewReader(r)}
}

// Next returns the payload of the next part, or io.EOF after the last one.
func (pr *PartReader) Next() ([]byte, error) {
	// Seek the boundary line.
	for {
		line, err := pr.readLine()
		if err != nil {
			return nil, err
		}
		if line == "--"+Boundary {
			break
		}
	}

	// Headers until the blank separator.
	length := -1
	for {
		line, err := pr.readLine()
		if err != nil {
			return nil, err
		}
		if line == "" {
			break
		}
		if v, ok := strings.CutPrefix(line, "Content-Length:"); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return nil, &errcode.E{C: errcode.InvalidParams, Op: "mjpeg.Next", Msg: line}
			}
			length = n
		}
	}
	if length < 0 {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "mjpeg.Next", Msg: "missing Content-Length"}
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(pr.br, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (pr *PartReader) readLine() (string, error) {
	line, err := pr.br.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
