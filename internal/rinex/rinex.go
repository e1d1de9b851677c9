// Package rinex reads GPS broadcast ephemerides and ionosphere/UTC
// parameters from RINEX navigation files, versions 2 and 3, and knows how
// to fetch the current hourly file from a public archive.
package rinex

import (
	"errors"
	"math"

	"github.com/gnsslab/plutosim/internal/geodesy"
	"github.com/gnsslab/plutosim/internal/gpstime"
)

const (
	// MaxSat is the number of GPS satellite slots per ephemeris set.
	MaxSat = 32

	// MaxSets bounds the number of hourly ephemeris sets kept from a
	// daily broadcast file.
	MaxSets = 13
)

// Parse failure kinds, distinguishable with errors.Is.
var (
	ErrVersion   = errors.New("rinex: version mismatch")
	ErrSystem    = errors.New("rinex: wrong navigation system")
	ErrTruncated = errors.New("rinex: truncated ephemeris block")
)

// Ephemeris holds one satellite's broadcast ephemeris record along with
// the derived quantities the orbit model reuses every call.
type Ephemeris struct {
	Valid bool

	T   gpstime.Date // epoch as written in the file
	TOC gpstime.Time // time of clock
	TOE gpstime.Time // time of ephemeris

	IODC int
	IODE int

	DeltaN float64 // mean motion correction (rad/s)
	Cuc    float64
	Cus    float64
	Cic    float64
	Cis    float64
	Crc    float64
	Crs    float64
	Ecc    float64 // eccentricity
	SqrtA  float64 // sqrt of semi-major axis (sqrt(m))
	M0     float64 // mean anomaly (rad)
	Omg0   float64 // longitude of ascending node (rad)
	Inc0   float64 // inclination (rad)
	Aop    float64 // argument of perigee (rad)
	OmgDot float64 // rate of right ascension (rad/s)
	IDot   float64 // rate of inclination (rad/s)
	Af0    float64 // clock bias (s)
	Af1    float64 // clock drift (s/s)
	Af2    float64 // clock drift rate (s/s^2)
	TGD    float64 // group delay (s)

	SVHealth int
	CodeL2   int

	// Derived at parse time.
	N       float64 // corrected mean motion (rad/s)
	Sq1e2   float64 // sqrt(1 - e^2)
	A       float64 // semi-major axis (m)
	OmgKDot float64 // OmgDot - OmegaEarth
}

// Derive fills the cached working variables from the parsed scalars. The
// parser calls it on every record; callers constructing records directly
// must do the same.
func (e *Ephemeris) Derive() {
	e.A = e.SqrtA * e.SqrtA
	e.N = math.Sqrt(geodesy.GMEarth/(e.A*e.A*e.A)) + e.DeltaN
	e.Sq1e2 = math.Sqrt(1.0 - e.Ecc*e.Ecc)
	e.OmgKDot = e.OmgDot - geodesy.OmegaEarth
}

// IonoUTC carries the Klobuchar coefficients and the GPS-UTC parameters
// from the navigation header. Valid is set only when all four header
// contributions were present.
type IonoUTC struct {
	Enable bool
	Valid  bool

	Alpha0, Alpha1, Alpha2, Alpha3 float64
	Beta0, Beta1, Beta2, Beta3     float64

	A0, A1 float64
	Tot    int
	Wnt    int

	Dtls  int
	Dtlsf int
	DN    int
	Wnlsf int
}

// Set is one hourly batch of ephemeris records indexed by satellite
// (PRN - 1).
type Set [MaxSat]Ephemeris

// Nav is the decoded content of one navigation file.
type Nav struct {
	Sets    []Set
	IonoUTC IonoUTC
	Date    string // content of the PGM / RUN BY / DATE header line
}

// FirstValid returns the earliest valid record of the given set along with
// its satellite index, or nil if the set is empty.
func (n *Nav) FirstValid(set int) (*Ephemeris, int) {
	if set < 0 || set >= len(n.Sets) {
		return nil, -1
	}
	best := -1
	for sv := range n.Sets[set] {
		eph := &n.Sets[set][sv]
		if eph.Valid && (best < 0 || eph.TOC.Sub(n.Sets[set][best].TOC) < 0) {
			best = sv
		}
	}
	if best < 0 {
		return nil, -1
	}
	return &n.Sets[set][best], best
}
