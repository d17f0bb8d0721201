package audio

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestSampleRateFromMIME(t *testing.T) {
	tests := []struct {
		name string
		mime string
		want int
	}{
		{"explicit rate", "audio/pcm;rate=16000", 16000},
		{"rate with spaces", "audio/L16; rate=22050 ; codec=pcm", 22050},
		{"no rate parameter", "audio/pcm", DefaultSampleRate},
		{"empty", "", DefaultSampleRate},
		{"unparseable rate", "audio/pcm;rate=fast", DefaultSampleRate},
		{"non-positive rate", "audio/pcm;rate=0", DefaultSampleRate},
		{"negative rate", "audio/pcm;rate=-8000", DefaultSampleRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SampleRateFromMIME(tt.mime); got != tt.want {
				t.Errorf("SampleRateFromMIME(%q) = %d, want %d", tt.mime, got, tt.want)
			}
		})
	}
}

func TestEncodeWAVPCM16LE(t *testing.T) {
	pcm := []byte{0x01, 0x02, 0x03, 0x04}
	wav := EncodeWAVPCM16LE(pcm, 16000)

	if len(wav) != 44+len(pcm) {
		t.Fatalf("expected %d bytes, got %d", 44+len(pcm), len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Error("missing RIFF/WAVE markers")
	}
	if string(wav[12:16]) != "fmt " {
		t.Error("missing fmt chunk")
	}
	if got := binary.LittleEndian.Uint16(wav[20:22]); got != 1 {
		t.Errorf("audio format = %d, want 1 (PCM)", got)
	}
	if got := binary.LittleEndian.Uint16(wav[22:24]); got != 1 {
		t.Errorf("channels = %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint32(wav[24:28]); got != 16000 {
		t.Errorf("sample rate = %d, want 16000", got)
	}
	if got := binary.LittleEndian.Uint32(wav[28:32]); got != 32000 {
		t.Errorf("byte rate = %d, want 32000", got)
	}
	if got := binary.LittleEndian.Uint16(wav[32:34]); got != 2 {
		t.Errorf("block align = %d, want 2", got)
	}
	if got := binary.LittleEndian.Uint16(wav[34:36]); got != 16 {
		t.Errorf("bits per sample = %d, want 16", got)
	}
	if string(wav[36:40]) != "data" {
		t.Error("missing data chunk")
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); got != uint32(len(pcm)) {
		t.Errorf("data size = %d, want %d", got, len(pcm))
	}
	if !bytes.Equal(wav[44:], pcm) {
		t.Error("PCM body not copied verbatim")
	}
	if got := binary.LittleEndian.Uint32(wav[4:8]); got != uint32(36+len(pcm)) {
		t.Errorf("riff size = %d, want %d", got, 36+len(pcm))
	}
}

func TestEncodeWAVDefaultsSampleRate(t *testing.T) {
	wav := EncodeWAVPCM16LE([]byte{0x00, 0x00}, 0)
	if got := binary.LittleEndian.Uint32(wav[24:28]); got != DefaultSampleRate {
		t.Errorf("sample rate = %d, want %d", got, DefaultSampleRate)
	}
}

func TestEncodeWAVPadsOddLengthPCM(t *testing.T) {
	pcm := []byte{0x01, 0x02, 0x03}
	wav := EncodeWAVPCM16LE(pcm, 24000)

	if got := binary.LittleEndian.Uint32(wav[40:44]); got != 4 {
		t.Errorf("data size = %d, want 4 (padded)", got)
	}
	if len(wav) != 44+4 {
		t.Fatalf("expected %d bytes, got %d", 44+4, len(wav))
	}
	if wav[len(wav)-1] != 0 {
		t.Error("expected zero padding byte")
	}
}

func TestWriteWAVPCM16LETo(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteWAVPCM16LETo(&buf, []byte{0x10, 0x20}, 24000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() != 46 {
		t.Errorf("expected 46 bytes, got %d", buf.Len())
	}
	if got := EncodeWAVPCM16LE([]byte{0x10, 0x20}, 24000); !bytes.Equal(got, buf.Bytes()) {
		t.Error("Encode and WriteTo disagree")
	}
}
