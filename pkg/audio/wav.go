// Package audio wraps raw PCM16 audio in a WAV container and resolves
// sample rates from MIME-type hints.
package audio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"strconv"
	"strings"
)

// DefaultSampleRate is used when a MIME hint is absent or unparseable.
// Gemini's audio preview models emit 24kHz PCM.
const DefaultSampleRate = 24000

// SampleRateFromMIME extracts the rate= parameter from a MIME type
// such as "audio/pcm;rate=24000". Absent, unparseable, or non-positive
// rates fall back to DefaultSampleRate.
func SampleRateFromMIME(mimeType string) int {
	for _, token := range strings.Split(mimeType, ";") {
		token = strings.TrimSpace(token)
		if !strings.HasPrefix(token, "rate=") {
			continue
		}
		rate, err := strconv.Atoi(strings.TrimPrefix(token, "rate="))
		if err != nil || rate <= 0 {
			return DefaultSampleRate
		}
		return rate
	}
	return DefaultSampleRate
}

// EncodeWAVPCM16LE wraps raw PCM16LE mono audio bytes in a WAV
// container. The body is copied verbatim; no byte-swapping is
// performed. An odd-length buffer is padded with one zero byte so the
// container always frames whole 16-bit samples.
func EncodeWAVPCM16LE(pcm []byte, sampleRate int) []byte {
	var buf bytes.Buffer
	buf.Grow(44 + len(pcm) + 1)
	// bytes.Buffer writes cannot fail.
	_ = WriteWAVPCM16LETo(&buf, pcm, sampleRate)
	return buf.Bytes()
}

// WriteWAVPCM16LETo writes raw PCM16LE mono audio bytes to out as a
// WAV stream, applying the same padding rule as EncodeWAVPCM16LE.
func WriteWAVPCM16LETo(out io.Writer, pcm []byte, sampleRate int) error {
	const (
		numChannels   = 1
		bitsPerSample = 16
		audioFormat   = 1 // PCM
	)
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	var pad []byte
	if len(pcm)%2 != 0 {
		pad = []byte{0}
	}

	dataSize := uint32(len(pcm) + len(pad))
	byteRate := uint32(sampleRate * numChannels * bitsPerSample / 8)
	blockAlign := uint16(numChannels * bitsPerSample / 8)

	w := bufio.NewWriter(out)

	// RIFF header.
	if _, err := w.WriteString("RIFF"); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(36)+dataSize); err != nil {
		return err
	}
	if _, err := w.WriteString("WAVE"); err != nil {
		return err
	}

	// fmt chunk.
	if _, err := w.WriteString("fmt "); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(16)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(audioFormat)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(numChannels)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(sampleRate)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, byteRate); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, blockAlign); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(bitsPerSample)); err != nil {
		return err
	}

	// data chunk.
	if _, err := w.WriteString("data"); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, dataSize); err != nil {
		return err
	}
	if _, err := w.Write(pcm); err != nil {
		return err
	}
	if _, err := w.Write(pad); err != nil {
		return err
	}
	return w.Flush()
}
