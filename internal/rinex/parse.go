package rinex

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gnsslab/plutosim/internal/gpstime"
)

// field returns the n characters of line starting at byte offset off,
// clipped to the line length. RINEX writers pad with blanks, but short
// lines are common enough in the wild to guard against.
func field(line string, off, n int) string {
	if off >= len(line) {
		return ""
	}
	end := off + n
	if end > len(line) {
		end = len(line)
	}
	return line[off:end]
}

// parseF decodes a RINEX float, rewriting the FORTRAN 'D' exponent
// designator to 'E' first. Blank fields decode to zero.
func parseF(s string) float64 {
	s = strings.TrimSpace(strings.Map(func(r rune) rune {
		if r == 'D' || r == 'd' {
			return 'E'
		}
		return r
	}, s))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseI decodes an integer field, tolerating blanks.
func parseI(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	// Some files right-pad integer fields with a fractional part.
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(v)
}

// iono/UTC header completeness bits.
const (
	flagAlpha = 1 << iota
	flagBeta
	flagUTC
	flagLeap
	flagAll = flagAlpha | flagBeta | flagUTC | flagLeap
)

// ReadNavFile opens and parses a navigation file, transparently
// decompressing gzip content.
func ReadNavFile(path string, v3 bool) (*Nav, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rinex: cannot open %s: %w", path, err)
	}
	defer f.Close()

	return ReadNav(f, v3)
}

// ReadNav parses a RINEX navigation stream. The v3 flag selects the
// version 3 grammar; the version reported by the file's own header must
// agree or ErrVersion is returned.
func ReadNav(r io.Reader, v3 bool) (*Nav, error) {
	br := bufio.NewReader(r)

	// Sniff for a gzip stream.
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("rinex: bad gzip stream: %w", err)
		}
		defer gz.Close()
		br = bufio.NewReader(gz)
	}

	sc := bufio.NewScanner(br)

	nav := &Nav{}
	if err := readHeader(sc, nav, v3); err != nil {
		return nil, err
	}
	if err := readBody(sc, nav, v3); err != nil {
		return nil, err
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("rinex: read: %w", err)
	}

	return nav, nil
}

func readHeader(sc *bufio.Scanner, nav *Nav, v3 bool) error {
	iu := &nav.IonoUTC
	flags := 0

	for sc.Scan() {
		line := sc.Text()
		tag := field(line, 60, 20)

		switch {
		case strings.HasPrefix(tag, "COMMENT"):
			continue

		case strings.HasPrefix(tag, "END OF HEADER"):
			iu.Valid = flags == flagAll
			return nil

		case strings.HasPrefix(tag, "RINEX VERSION / TYPE"):
			ver := parseF(field(line, 0, 9))
			if v3 && ver < 3.0 {
				return fmt.Errorf("%w: got %.2f, want >= 3", ErrVersion, ver)
			}
			if !v3 && ver >= 3.0 {
				return fmt.Errorf("%w: got %.2f, want < 3", ErrVersion, ver)
			}
			if v3 {
				if field(line, 20, 1) != "N" && field(line, 40, 1) != "G" {
					return fmt.Errorf("%w: type %q system %q", ErrSystem,
						field(line, 20, 1), field(line, 40, 1))
				}
			} else if field(line, 20, 1) != "N" {
				return fmt.Errorf("%w: type %q", ErrSystem, field(line, 20, 1))
			}

		case strings.HasPrefix(tag, "PGM / RUN BY / DATE"):
			nav.Date = strings.TrimSpace(field(line, 40, 20))

		case !v3 && strings.HasPrefix(tag, "ION ALPHA"):
			iu.Alpha0 = parseF(field(line, 2, 12))
			iu.Alpha1 = parseF(field(line, 14, 12))
			iu.Alpha2 = parseF(field(line, 26, 12))
			iu.Alpha3 = parseF(field(line, 38, 12))
			flags |= flagAlpha

		case !v3 && strings.HasPrefix(tag, "ION BETA"):
			iu.Beta0 = parseF(field(line, 2, 12))
			iu.Beta1 = parseF(field(line, 14, 12))
			iu.Beta2 = parseF(field(line, 26, 12))
			iu.Beta3 = parseF(field(line, 38, 12))
			flags |= flagBeta

		case !v3 && strings.HasPrefix(tag, "DELTA-UTC"):
			iu.A0 = parseF(field(line, 3, 19))
			iu.A1 = parseF(field(line, 22, 19))
			iu.Tot = parseI(field(line, 41, 9))
			iu.Wnt = parseI(field(line, 50, 9))
			if iu.Tot%4096 == 0 {
				flags |= flagUTC
			}

		case v3 && strings.HasPrefix(tag, "IONOSPHERIC CORR"):
			switch {
			case strings.HasPrefix(line, "GPSA"):
				iu.Alpha0 = parseF(field(line, 5, 12))
				iu.Alpha1 = parseF(field(line, 17, 12))
				iu.Alpha2 = parseF(field(line, 29, 12))
				iu.Alpha3 = parseF(field(line, 41, 12))
				flags |= flagAlpha
			case strings.HasPrefix(line, "GPSB"):
				iu.Beta0 = parseF(field(line, 5, 12))
				iu.Beta1 = parseF(field(line, 17, 12))
				iu.Beta2 = parseF(field(line, 29, 12))
				iu.Beta3 = parseF(field(line, 41, 12))
				flags |= flagBeta
			}

		case v3 && strings.HasPrefix(tag, "TIME SYSTEM CORR") && strings.HasPrefix(line, "GPUT"):
			iu.A0 = parseF(field(line, 5, 17))
			iu.A1 = parseF(field(line, 22, 16))
			iu.Tot = parseI(field(line, 38, 7))
			iu.Wnt = parseI(field(line, 45, 6))
			if iu.Tot%4096 == 0 {
				flags |= flagUTC
			}

		case strings.HasPrefix(tag, "LEAP SECONDS"):
			iu.Dtls = parseI(field(line, 0, 6))
			flags |= flagLeap
		}
	}

	iu.Valid = flags == flagAll
	return nil
}

// orbitLine reads the next continuation line of an ephemeris block.
func orbitLine(sc *bufio.Scanner) (string, error) {
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", fmt.Errorf("rinex: read: %w", err)
		}
		return "", ErrTruncated
	}
	return sc.Text(), nil
}

func readBody(sc *bufio.Scanner, nav *Nav, v3 bool) error {
	// Continuation-line float columns differ by one between v2 and v3.
	col := [4]int{3, 22, 41, 60}
	if v3 {
		col = [4]int{4, 23, 42, 61}
	}

	g0 := gpstime.Invalid()
	nav.Sets = append(nav.Sets, Set{})
	iset := 0

	for sc.Scan() {
		line := sc.Text()

		var sv int
		var t gpstime.Date

		if v3 {
			// Records of other constellations are skipped wholesale.
			if !strings.HasPrefix(line, "G") {
				continue
			}
			sv = parseI(field(line, 1, 2)) - 1
			t.Y = parseI(field(line, 4, 4))
			t.M = parseI(field(line, 9, 2))
			t.D = parseI(field(line, 12, 2))
			t.HH = parseI(field(line, 15, 2))
			t.MM = parseI(field(line, 18, 2))
			t.Sec = float64(parseI(field(line, 21, 2)))
		} else {
			sv = parseI(field(line, 0, 2)) - 1
			t.Y = parseI(field(line, 3, 2)) + 2000
			t.M = parseI(field(line, 6, 2))
			t.D = parseI(field(line, 9, 2))
			t.HH = parseI(field(line, 12, 2))
			t.MM = parseI(field(line, 15, 2))
			// Only the first two characters of the four-character epoch
			// seconds field are taken; hourly nav epochs carry 0.0 here
			// anyway. TODO: widen to the full field.
			t.Sec = float64(parseI(field(line, 18, 2)))
		}

		if sv < 0 || sv >= MaxSat {
			continue
		}

		g := gpstime.FromDate(t)

		if !g0.Valid() {
			g0 = g
		}

		// A TOC jump of more than an hour starts a new set.
		if g.Sub(g0) > gpstime.SecondsInHour {
			g0 = g
			iset++
			if iset >= MaxSets {
				break
			}
			nav.Sets = append(nav.Sets, Set{})
		}

		eph := &nav.Sets[iset][sv]
		eph.T = t
		eph.TOC = g

		eph.Af0 = parseF(field(line, col[1], 19))
		eph.Af1 = parseF(field(line, col[2], 19))
		eph.Af2 = parseF(field(line, col[3], 19))

		// BROADCAST ORBIT - 1
		l, err := orbitLine(sc)
		if err != nil {
			return err
		}
		eph.IODE = parseI(field(l, col[0], 19))
		eph.Crs = parseF(field(l, col[1], 19))
		eph.DeltaN = parseF(field(l, col[2], 19))
		eph.M0 = parseF(field(l, col[3], 19))

		// BROADCAST ORBIT - 2
		if l, err = orbitLine(sc); err != nil {
			return err
		}
		eph.Cuc = parseF(field(l, col[0], 19))
		eph.Ecc = parseF(field(l, col[1], 19))
		eph.Cus = parseF(field(l, col[2], 19))
		eph.SqrtA = parseF(field(l, col[3], 19))

		// BROADCAST ORBIT - 3
		if l, err = orbitLine(sc); err != nil {
			return err
		}
		eph.TOE.Sec = parseF(field(l, col[0], 19))
		eph.Cic = parseF(field(l, col[1], 19))
		eph.Omg0 = parseF(field(l, col[2], 19))
		eph.Cis = parseF(field(l, col[3], 19))

		// BROADCAST ORBIT - 4
		if l, err = orbitLine(sc); err != nil {
			return err
		}
		eph.Inc0 = parseF(field(l, col[0], 19))
		eph.Crc = parseF(field(l, col[1], 19))
		eph.Aop = parseF(field(l, col[2], 19))
		eph.OmgDot = parseF(field(l, col[3], 19))

		// BROADCAST ORBIT - 5
		if l, err = orbitLine(sc); err != nil {
			return err
		}
		eph.IDot = parseF(field(l, col[0], 19))
		eph.CodeL2 = parseI(field(l, col[1], 19))
		eph.TOE.Week = parseI(field(l, col[2], 19))

		// BROADCAST ORBIT - 6
		if l, err = orbitLine(sc); err != nil {
			return err
		}
		eph.SVHealth = parseI(field(l, col[1], 19))
		if eph.SVHealth > 0 && eph.SVHealth < 32 {
			eph.SVHealth += 32 // flag unhealthy in the MSB
		}
		eph.TGD = parseF(field(l, col[2], 19))
		eph.IODC = parseI(field(l, col[3], 19))

		// BROADCAST ORBIT - 7, transmission time, unused.
		if _, err = orbitLine(sc); err != nil {
			return err
		}

		eph.Valid = true
		eph.Derive()
	}

	if !g0.Valid() {
		nav.Sets = nil
	}

	return nil
}
