package wire

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Send writes one length-prefixed JSON frame: "<decimal-length>\n<json-bytes>",
// with length counting only the JSON payload bytes and no trailing newline
// after the payload. Grounded in original_source/src/utils/jsonsocket.py's
// json_send.
func Send(w io.Writer, m Message) error {
	payload, err := Encode(m)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "%d\n", len(payload)); err != nil {
		return fmt.Errorf("send length prefix: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("send payload: %w", err)
	}
	return nil
}

// Recv reads one length-prefixed JSON frame and decodes it. Grounded in
// original_source/src/utils/jsonsocket.py's json_recv.
func Recv(r *bufio.Reader) (Message, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("recv length prefix: %w", err)
	}

	length, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return nil, fmt.Errorf("invalid length prefix %q: %w: %w", line, ErrProtocol, err)
	}
	if length < 0 {
		return nil, fmt.Errorf("invalid length prefix %q: %w: negative", line, ErrProtocol)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("recv payload (%d bytes): %w", length, err)
	}

	return Decode(payload)
}
