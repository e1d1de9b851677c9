package sdr

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func TestConfigClamp(t *testing.T) {
	tests := []struct {
		name string
		in   Config
		gain float64
		bw   int64
	}{
		{"high gain", Config{GainDB: 5, BandwidthHz: DefaultBandwidthHz}, 0, DefaultBandwidthHz},
		{"low gain", Config{GainDB: -100, BandwidthHz: DefaultBandwidthHz}, -80, DefaultBandwidthHz},
		{"wide bw", Config{GainDB: -20, BandwidthHz: 9000000}, -20, MaxBandwidthHz},
		{"narrow bw", Config{GainDB: -20, BandwidthHz: 100}, -20, MinBandwidthHz},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.Clamp()
			if tt.in.GainDB != tt.gain {
				t.Errorf("gain = %v, want %v", tt.in.GainDB, tt.gain)
			}
			if tt.in.BandwidthHz != tt.bw {
				t.Errorf("bw = %v, want %v", tt.in.BandwidthHz, tt.bw)
			}
		})
	}
}

func TestFileSinkWritesInterleaved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "iq.bin")

	s, err := NewFileSink(path)
	if err != nil {
		t.Fatal(err)
	}

	frame := []int16{100, -100, 32767, -32768}
	if err := s.Push(context.Background(), frame); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) != 2*len(frame) {
		t.Fatalf("wrote %d bytes, want %d", len(raw), 2*len(frame))
	}
	for i, want := range frame {
		got := int16(binary.LittleEndian.Uint16(raw[2*i:]))
		if got != want {
			t.Errorf("sample %d = %d, want %d", i, got, want)
		}
	}
}

func TestFileSinkCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "iq.bin")

	s, err := NewFileSink(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Push(ctx, []int16{1, 2}); err == nil {
		t.Error("want context error")
	}
}
