package audio

import (
	"math"
	"testing"
)

const decodeTolerance = 1.0 / 32767.0

func TestDecodePCM16_Extremes(t *testing.T) {
	tests := []struct {
		name     string
		pcm      []byte
		expected float32
	}{
		{name: "min", pcm: []byte{0x00, 0x80}, expected: -1.0},
		{name: "max", pcm: []byte{0xFF, 0x7F}, expected: 1.0},
		{name: "zero", pcm: []byte{0x00, 0x00}, expected: 0.0},
		{name: "minus one", pcm: []byte{0xFF, 0xFF}, expected: -1.0 / 32767.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples := DecodePCM16(tt.pcm)
			if len(samples) != 1 {
				t.Fatalf("expected 1 sample, got %d", len(samples))
			}
			if math.Abs(float64(samples[0]-tt.expected)) > decodeTolerance {
				t.Errorf("expected ~%f, got %f", tt.expected, samples[0])
			}
			if samples[0] < -1.0 || samples[0] > 1.0 {
				t.Errorf("sample %f out of range", samples[0])
			}
		})
	}
}

func TestDecodePCM16_LengthAndOrder(t *testing.T) {
	pcm := []byte{0x00, 0x00, 0x00, 0x40, 0x00, 0xC0, 0xFF, 0x7F}
	samples := DecodePCM16(pcm)
	if len(samples) != len(pcm)/2 {
		t.Fatalf("expected %d samples, got %d", len(pcm)/2, len(samples))
	}
	if samples[0] != 0 {
		t.Errorf("sample 0: expected 0, got %f", samples[0])
	}
	if samples[1] <= 0 || samples[2] >= 0 {
		t.Errorf("sample order not preserved: %v", samples)
	}
	if math.Abs(float64(samples[1]+samples[2])) > decodeTolerance {
		t.Errorf("samples 1 and 2 should mirror, got %f and %f", samples[1], samples[2])
	}
}

func TestDecodePCM16_Empty(t *testing.T) {
	if samples := DecodePCM16(nil); len(samples) != 0 {
		t.Errorf("expected no samples, got %d", len(samples))
	}
	if samples := DecodePCM16([]byte{}); len(samples) != 0 {
		t.Errorf("expected no samples, got %d", len(samples))
	}
}

func TestDecodePCM16_OddTrailingByte(t *testing.T) {
	samples := DecodePCM16([]byte{0xFF, 0x7F, 0x12})
	if len(samples) != 1 {
		t.Errorf("expected 1 sample for 3 bytes, got %d", len(samples))
	}
}

func TestPCMBytesToInt16(t *testing.T) {
	pcm := []byte{0x00, 0x00, 0xFF, 0x7F, 0x00, 0x80}
	samples := PCMBytesToInt16(pcm)
	if len(samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(samples))
	}
	if samples[0] != 0 {
		t.Errorf("sample 0: expected 0, got %d", samples[0])
	}
	if samples[1] != 32767 {
		t.Errorf("sample 1: expected 32767, got %d", samples[1])
	}
	if samples[2] != -32768 {
		t.Errorf("sample 2: expected -32768, got %d", samples[2])
	}
}

func TestPCMBytesToInt16_OddBytes(t *testing.T) {
	samples := PCMBytesToInt16([]byte{0x00, 0x00, 0xFF})
	if len(samples) != 1 {
		t.Errorf("expected 1 sample for 3 bytes, got %d", len(samples))
	}
}

func TestInt16ToPCMBytes_RoundTrip(t *testing.T) {
	original := []int16{0, 1000, -1000, 32767, -32768}
	recovered := PCMBytesToInt16(Int16ToPCMBytes(original))
	for i := range original {
		if recovered[i] != original[i] {
			t.Errorf("sample %d: expected %d, got %d", i, original[i], recovered[i])
		}
	}
}

func TestFloat32ToInt16(t *testing.T) {
	samples := []float32{0.0, 1.0, -1.0, 0.5}
	result := Float32ToInt16(samples)
	if len(result) != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), len(result))
	}
	if result[0] != 0 {
		t.Errorf("sample 0: expected 0, got %d", result[0])
	}
	if result[1] != 32767 {
		t.Errorf("sample 1: expected 32767, got %d", result[1])
	}
	if result[2] != -32767 {
		t.Errorf("sample 2: expected -32767, got %d", result[2])
	}
	if math.Abs(float64(result[3]-16383)) > 1 {
		t.Errorf("sample 3: expected ~16383, got %d", result[3])
	}
}

func TestFloat32ToInt16_Clipping(t *testing.T) {
	result := Float32ToInt16([]float32{2.0, -2.0})
	if result[0] != 32767 {
		t.Errorf("sample 0: should clip to 32767, got %d", result[0])
	}
	if result[1] != -32767 {
		t.Errorf("sample 1: should clip to -32767, got %d", result[1])
	}
}
