package motion

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	serial "github.com/tarm/goserial"

	"github.com/gnsslab/plutosim/internal/geodesy"
)

// ggaBaud is the conventional NMEA output rate of consumer receivers.
const ggaBaud = 9600

// ReadNMEAGGA parses GGA sentences into a trajectory, converting each fix
// from geodetic to ECEF. Sentences other than GGA are skipped; malformed
// GGA sentences abort the read.
func ReadNMEAGGA(r io.Reader) (*Trajectory, error) {
	sc := bufio.NewScanner(r)
	tr := &Trajectory{}

	for sc.Scan() {
		if len(tr.points) >= MaxPoints {
			break
		}

		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "$") {
			continue
		}
		// Strip the checksum before splitting.
		if i := strings.IndexByte(line, '*'); i >= 0 {
			line = line[:i]
		}

		fields := strings.Split(line, ",")
		if len(fields) < 10 || !strings.HasSuffix(fields[0], "GGA") {
			continue
		}

		llh, err := parseGGA(fields)
		if err != nil {
			return nil, err
		}

		tr.points = append(tr.points, geodesy.LLHToXYZ(llh))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("motion: read: %w", err)
	}

	if len(tr.points) == 0 {
		return nil, fmt.Errorf("motion: no GGA fixes")
	}

	return tr, nil
}

// parseGGA converts the latitude/longitude/height fields of a split GGA
// sentence into geodetic radians and meters.
func parseGGA(fields []string) (geodesy.LLH, error) {
	var llh geodesy.LLH

	lat, err := parseDDM(fields[2], 2)
	if err != nil {
		return llh, fmt.Errorf("motion: GGA latitude %q: %w", fields[2], err)
	}
	if fields[3] == "S" {
		lat = -lat
	}

	lon, err := parseDDM(fields[4], 3)
	if err != nil {
		return llh, fmt.Errorf("motion: GGA longitude %q: %w", fields[4], err)
	}
	if fields[5] == "W" {
		lon = -lon
	}

	alt, err := strconv.ParseFloat(fields[9], 64)
	if err != nil {
		return llh, fmt.Errorf("motion: GGA altitude %q: %w", fields[9], err)
	}

	llh.Lat = lat / geodesy.R2D
	llh.Lon = lon / geodesy.R2D
	llh.Hgt = alt

	return llh, nil
}

// parseDDM decodes the NMEA ddmm.mmmm / dddmm.mmmm angle encoding into
// decimal degrees. degDigits is 2 for latitude, 3 for longitude.
func parseDDM(s string, degDigits int) (float64, error) {
	if len(s) <= degDigits {
		return 0, fmt.Errorf("angle too short")
	}

	deg, err := strconv.ParseFloat(s[:degDigits], 64)
	if err != nil {
		return 0, err
	}
	min, err := strconv.ParseFloat(s[degDigits:], 64)
	if err != nil {
		return 0, err
	}

	return deg + min/60.0, nil
}

// OpenGGA reads a GGA trajectory from path. A character device (a serial
// receiver) is opened at 9600 baud and read until the trajectory buffer
// fills or the stream closes; anything else is treated as a capture file.
func OpenGGA(path string) (*Trajectory, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("motion: cannot open %s: %w", path, err)
	}

	if info.Mode()&os.ModeCharDevice != 0 {
		port, err := serial.OpenPort(&serial.Config{Name: path, Baud: ggaBaud})
		if err != nil {
			return nil, fmt.Errorf("motion: open serial %s: %w", path, err)
		}
		defer port.Close()

		return ReadNMEAGGA(port)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("motion: cannot open %s: %w", path, err)
	}
	defer f.Close()

	return ReadNMEAGGA(f)
}
