package protocol

import (
	"encoding/binary"
	"hash/crc32"
)

// Message is a single entry of a classic MessageSet (magic byte 1).
type Message struct {
	Offset    int64
	Timestamp int64
	Key       []byte
	Value     []byte
}

// DecodeMessageSet parses a classic MessageSet (the byte payload a
// ProduceRequestPartition or FetchResponsePartition carries). A message
// whose declared size would run past the end of data is a partial
// trailing message — real producers never split one across the
// messageset boundary, so it's dropped rather than treated as an error.
func DecodeMessageSet(data []byte) []Message {
	var messages []Message
	pos := 0

	for pos+12 <= len(data) {
		size := int32(binary.BigEndian.Uint32(data[pos+8 : pos+12]))
		msgStart := pos + 12
		msgEnd := msgStart + int(size)
		if size < 0 || msgEnd > len(data) {
			break
		}

		body := data[msgStart:msgEnd]
		if len(body) < 14 { // crc(4) magic(1) attrs(1) timestamp(8)
			pos = msgEnd
			continue
		}

		timestamp := int64(binary.BigEndian.Uint64(body[6:14]))
		rest := body[14:]
		key, n := readLengthPrefixed(rest)
		rest = rest[n:]
		value, _ := readLengthPrefixed(rest)

		messages = append(messages, Message{Timestamp: timestamp, Key: key, Value: value})
		pos = msgEnd
	}

	return messages
}

func readLengthPrefixed(b []byte) ([]byte, int) {
	if len(b) < 4 {
		return nil, len(b)
	}
	l := int32(binary.BigEndian.Uint32(b[:4]))
	if l < 0 {
		return nil, 4
	}
	if 4+int(l) > len(b) {
		return nil, len(b)
	}
	return b[4 : 4+l], 4 + int(l)
}

// EncodeMessageSet serializes offset-assigned messages into the classic
// MessageSet wire format, computing a fresh IEEE CRC-32 per message over
// the bytes from magic through value.
func EncodeMessageSet(messages []Message) []byte {
	out := make([]byte, 0, 64*len(messages))

	for _, m := range messages {
		body := make([]byte, 0, 10+len(m.Key)+len(m.Value))
		body = append(body, 1) // magic
		body = append(body, 0) // attributes
		var ts [8]byte
		binary.BigEndian.PutUint64(ts[:], uint64(m.Timestamp))
		body = append(body, ts[:]...)
		body = appendBytesField(body, m.Key)
		body = appendBytesField(body, m.Value)

		crc := crc32.ChecksumIEEE(body)

		msg := make([]byte, 4+len(body))
		binary.BigEndian.PutUint32(msg[:4], crc)
		copy(msg[4:], body)

		entry := make([]byte, 12+len(msg))
		binary.BigEndian.PutUint64(entry[0:8], uint64(m.Offset))
		binary.BigEndian.PutUint32(entry[8:12], uint32(len(msg)))
		copy(entry[12:], msg)

		out = append(out, entry...)
	}

	return out
}

func appendBytesField(buf, data []byte) []byte {
	var l [4]byte
	if data == nil {
		binary.BigEndian.PutUint32(l[:], uint32(int32(-1)))
		return append(buf, l[:]...)
	}
	binary.BigEndian.PutUint32(l[:], uint32(len(data)))
	buf = append(buf, l[:]...)
	return append(buf, data...)
}
