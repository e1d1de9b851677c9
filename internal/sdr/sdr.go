// Package sdr carries the transmit-side configuration and the sample
// sinks the synthesis engine can feed: a raw I/Q file (or stdout) and a
// UDP stream for network-attached SDR front ends. The interleaved int16
// I/Q layout on the wire matches what the PlutoSDR transmit buffer
// expects: I first, Q second, host byte order.
package sdr

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"os"
)

// RF defaults and clamp limits.
const (
	DefaultLOHz       = 1575420000 // GPS L1
	DefaultSampleRate = 2600000
	MinSampleRate     = 1000000

	DefaultBandwidthHz = 3000000
	MinBandwidthHz     = 1000000
	MaxBandwidthHz     = 5000000

	DefaultGainDB = -20.0
	MinGainDB     = -80.0
	MaxGainDB     = 0.0

	DefaultHostname = "pluto.local"
)

// Config describes the transmit front end.
type Config struct {
	SampleRateHz int64
	BandwidthHz  int64
	LOHz         int64
	GainDB       float64
	URI          string
	Hostname     string
}

// DefaultConfig returns the transmit defaults for the L1 scenario.
func DefaultConfig() Config {
	return Config{
		SampleRateHz: DefaultSampleRate,
		BandwidthHz:  DefaultBandwidthHz,
		LOHz:         DefaultLOHz,
		GainDB:       DefaultGainDB,
		Hostname:     DefaultHostname,
	}
}

// Clamp forces gain and bandwidth into their hardware limits.
func (c *Config) Clamp() {
	if c.GainDB > MaxGainDB {
		c.GainDB = MaxGainDB
	}
	if c.GainDB < MinGainDB {
		c.GainDB = MinGainDB
	}
	if c.BandwidthHz > MaxBandwidthHz {
		c.BandwidthHz = MaxBandwidthHz
	}
	if c.BandwidthHz < MinBandwidthHz {
		c.BandwidthHz = MinBandwidthHz
	}
}

// FileSink writes interleaved int16 I/Q to a file, "-" meaning stdout.
type FileSink struct {
	f   *os.File
	own bool
	buf []byte
}

// NewFileSink opens path for writing.
func NewFileSink(path string) (*FileSink, error) {
	if path == "-" {
		return &FileSink{f: os.Stdout}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("sdr: create %s: %w", path, err)
	}
	return &FileSink{f: f, own: true}, nil
}

// Push writes one frame.
func (s *FileSink) Push(ctx context.Context, iq []int16) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(s.buf) < 2*len(iq) {
		s.buf = make([]byte, 2*len(iq))
	}
	for i, v := range iq {
		binary.LittleEndian.PutUint16(s.buf[2*i:], uint16(v))
	}

	if _, err := s.f.Write(s.buf[:2*len(iq)]); err != nil {
		return fmt.Errorf("sdr: write: %w", err)
	}
	return nil
}

// Close closes the underlying file unless it is stdout.
func (s *FileSink) Close() error {
	if !s.own {
		return nil
	}
	return s.f.Close()
}

// UDPSink streams I/Q frames as fixed-size datagrams to a network SDR
// front end.
type UDPSink struct {
	conn *net.UDPConn
	buf  []byte
}

// udpChunk is the number of int16 values per datagram, sized well under
// the common 64 KiB datagram limit.
const udpChunk = 16384

// NewUDPSink dials the given host:port.
func NewUDPSink(addr string) (*UDPSink, error) {
	ua, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("sdr: resolve %s: %w", addr, err)
	}
	conn, err := net.DialUDP("udp", nil, ua)
	if err != nil {
		return nil, fmt.Errorf("sdr: dial %s: %w", addr, err)
	}
	return &UDPSink{conn: conn, buf: make([]byte, 2*udpChunk)}, nil
}

// Push sends one frame in datagram-sized chunks.
func (s *UDPSink) Push(ctx context.Context, iq []int16) error {
	for off := 0; off < len(iq); off += udpChunk {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := off + udpChunk
		if end > len(iq) {
			end = len(iq)
		}

		chunk := iq[off:end]
		for i, v := range chunk {
			binary.LittleEndian.PutUint16(s.buf[2*i:], uint16(v))
		}

		if _, err := s.conn.Write(s.buf[:2*len(chunk)]); err != nil {
			return fmt.Errorf("sdr: send: %w", err)
		}
	}
	return nil
}

// Close closes the socket.
func (s *UDPSink) Close() error {
	return s.conn.Close()
}
