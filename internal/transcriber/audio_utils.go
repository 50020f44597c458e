package transcriber

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	pcmSampleRate    = 16000
	pcmChannels      = 1
	pcmBitsPerSample = 16
)

type wavHeader struct {
	ChunkID       [4]byte
	ChunkSize     uint32
	Format        [4]byte
	Subchunk1ID   [4]byte
	Subchunk1Size uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Subchunk2ID   [4]byte
	Subchunk2Size uint32
}

// convertToWAV wraps raw 16kHz mono s16 PCM in a WAV container
func convertToWAV(rawAudio []byte) ([]byte, error) {
	if len(rawAudio)%(pcmChannels*pcmBitsPerSample/8) != 0 {
		return nil, fmt.Errorf("pcm length %d is not a whole number of samples", len(rawAudio))
	}
	h := wavHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     uint32(36 + len(rawAudio)),
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1, // PCM
		NumChannels:   pcmChannels,
		SampleRate:    pcmSampleRate,
		ByteRate:      pcmSampleRate * pcmChannels * pcmBitsPerSample / 8,
		BlockAlign:    pcmChannels * pcmBitsPerSample / 8,
		BitsPerSample: pcmBitsPerSample,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: uint32(len(rawAudio)),
	}

	var buf bytes.Buffer
	buf.Grow(44 + len(rawAudio))
	if err := binary.Write(&buf, binary.LittleEndian, h); err != nil {
		return nil, fmt.Errorf("write wav header: %w", err)
	}
	buf.Write(rawAudio)
	return buf.Bytes(), nil
}
