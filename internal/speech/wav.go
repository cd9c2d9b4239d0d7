package speech

import (
	"bytes"
	"encoding/binary"
)

// WAV wraps raw PCM samples in a RIFF/WAVE container so the audio can be
// written to a file or served over HTTP.
func WAV(a *Audio) []byte {
	byteRate := a.SampleRate * a.Channels * BitsPerSample / 8
	blockAlign := a.Channels * BitsPerSample / 8
	dataLen := len(a.PCM)

	buf := &bytes.Buffer{}
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(buf, binary.LittleEndian, uint16(a.Channels))
	binary.Write(buf, binary.LittleEndian, uint32(a.SampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(buf, binary.LittleEndian, uint16(BitsPerSample))

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(dataLen))
	buf.Write(a.PCM)

	return buf.Bytes()
}
