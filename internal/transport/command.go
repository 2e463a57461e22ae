package transport

// Frame opcodes understood by the station.
const (
	OpWrite32 byte = 0xA0
	OpRead    byte = 0xA1
	OpWrite1  byte = 0xA2

	// AckByte fills every byte of a write acknowledgement.
	AckByte byte = 0xA5

	CommandSize = 8
	AckSize     = 8
	PayloadSize = 32
)

// Command builds the 8-byte frame for op at addr. data is only meaningful
// for single-byte writes.
func Command(op byte, addr int, data byte) [CommandSize]byte {
	return [CommandSize]byte{op, byte(addr >> 8), byte(addr), 0x20, op, data, 0x00, 0x20}
}

// ParseCommand splits a frame built by Command. ok is false for frames that
// are too short or whose opcode bytes disagree.
func ParseCommand(frame []byte) (op byte, addr int, data byte, ok bool) {
	if len(frame) < CommandSize || frame[0] != frame[4] {
		return 0, 0, 0, false
	}
	switch frame[0] {
	case OpRead, OpWrite1, OpWrite32:
	default:
		return 0, 0, 0, false
	}
	return frame[0], int(frame[1])<<8 | int(frame[2]), frame[5], true
}

// FrameSize is the number of bytes a frame with opcode op occupies on the
// wire, including the payload of a 32-byte write.
func FrameSize(op byte) int {
	if op == OpWrite32 {
		return CommandSize + PayloadSize
	}
	return CommandSize
}

// Ack is the reply to an accepted write.
func Ack() []byte {
	ack := make([]byte, AckSize)
	for i := range ack {
		ack[i] = AckByte
	}
	return ack
}

// IsAck reports whether reply is a complete acknowledgement.
func IsAck(reply []byte) bool {
	if len(reply) != AckSize {
		return false
	}
	for _, b := range reply {
		if b != AckByte {
			return false
		}
	}
	return true
}
