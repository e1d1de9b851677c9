// Package motion supplies the receiver position stream driving the
// simulation: a fixed ECEF point, a 10 Hz user-motion CSV trajectory, or
// an NMEA GGA sentence stream from a file or serial device.
package motion

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gnsslab/plutosim/internal/geodesy"
)

// MaxPoints bounds a trajectory to five minutes at the 10 Hz cadence.
const MaxPoints = 3000

// Source yields receiver ECEF positions at the 10 Hz simulation cadence.
// The engine indexes positions modulo Len, restarting the trajectory when
// it runs out.
type Source interface {
	Position(i int) geodesy.Vec3
	Len() int
}

// staticSource is a single fixed position.
type staticSource struct {
	xyz geodesy.Vec3
}

// Static returns a Source that always reports the same position.
func Static(xyz geodesy.Vec3) Source {
	return staticSource{xyz: xyz}
}

func (s staticSource) Position(int) geodesy.Vec3 { return s.xyz }
func (s staticSource) Len() int                  { return 1 }

// Trajectory is a bounded sequence of ECEF positions.
type Trajectory struct {
	points []geodesy.Vec3
}

// Position returns the i-th point, wrapping at the end.
func (t *Trajectory) Position(i int) geodesy.Vec3 {
	return t.points[i%len(t.points)]
}

// Len returns the number of points.
func (t *Trajectory) Len() int { return len(t.points) }

// ReadUserMotion parses a user-motion CSV stream of `time,x,y,z` rows in
// ECEF meters at 10 Hz, up to MaxPoints rows.
func ReadUserMotion(r io.Reader) (*Trajectory, error) {
	sc := bufio.NewScanner(r)
	tr := &Trajectory{}

	for sc.Scan() {
		if len(tr.points) >= MaxPoints {
			break
		}

		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) < 4 {
			return nil, fmt.Errorf("motion: malformed row %q", line)
		}

		var xyz geodesy.Vec3
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(parts[i+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("motion: row %q: %w", line, err)
			}
			xyz[i] = v
		}

		tr.points = append(tr.points, xyz)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("motion: read: %w", err)
	}

	if len(tr.points) == 0 {
		return nil, fmt.Errorf("motion: no trajectory points")
	}

	return tr, nil
}

// ReadUserMotionFile reads a user-motion CSV file.
func ReadUserMotionFile(path string) (*Trajectory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("motion: cannot open %s: %w", path, err)
	}
	defer f.Close()

	return ReadUserMotion(f)
}
