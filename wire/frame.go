package wire

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// compressionThreshold is the minimum envelope size, in bytes, worth paying
// zlib's framing overhead for. Below it frames go out uncompressed.
const compressionThreshold = 256

const (
	frameUncompressed byte = 0x00
	frameZlib         byte = 0x01
)

// Frame wraps an encoded envelope with a one-byte compression header,
// transparently zlib-compressing payloads at or above compressionThreshold.
func Frame(envelope []byte) ([]byte, error) {
	if len(envelope) < compressionThreshold {
		return append([]byte{frameUncompressed}, envelope...), nil
	}

	var buf bytes.Buffer
	buf.WriteByte(frameZlib)
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(envelope); err != nil {
		return nil, fmt.Errorf("wire: zlib compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("wire: zlib close: %w", err)
	}
	return buf.Bytes(), nil
}

// Unframe strips and, if necessary, inflates a frame's header byte, returning
// the raw envelope bytes ready for Decode.
func Unframe(frame []byte) ([]byte, error) {
	if len(frame) == 0 {
		return nil, fmt.Errorf("wire: empty frame")
	}
	header, body := frame[0], frame[1:]
	switch header {
	case frameUncompressed:
		return body, nil
	case frameZlib:
		zr, err := zlib.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("wire: zlib reader: %w", err)
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("wire: zlib decompress: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("wire: unknown frame header %#x", header)
	}
}

// EncodeFrame is the convenience one-shot path: encode the message into an
// envelope, then frame it for wire transmission.
func EncodeFrame(typ MessageType, msg Message) ([]byte, error) {
	envelope, err := Encode(typ, msg)
	if err != nil {
		return nil, err
	}
	return Frame(envelope)
}

// DecodeFrame is the convenience one-shot inverse of EncodeFrame.
func DecodeFrame(frame []byte) (MessageType, Message, error) {
	envelope, err := Unframe(frame)
	if err != nil {
		return 0, nil, err
	}
	return Decode(envelope)
}
