package sim

import (
	"math"

	"github.com/gnsslab/plutosim/internal/cacode"
	"github.com/gnsslab/plutosim/internal/geodesy"
	"github.com/gnsslab/plutosim/internal/gpstime"
	"github.com/gnsslab/plutosim/internal/navmsg"
	"github.com/gnsslab/plutosim/internal/orbit"
)

// MaxChannels is the size of the satellite channel pool.
const MaxChannels = 12

// PhaseMode selects the per-channel carrier phase representation.
type PhaseMode int

const (
	// PhaseFloat keeps the carrier phase as a float in [0, 1) cycles and
	// indexes the carrier table with floor(512*phase). Smoother phase,
	// slightly higher cost. The default.
	PhaseFloat PhaseMode = iota

	// PhaseInt keeps a 25-bit unsigned accumulator (scale 512*65536) and
	// hard-quantizes the table index to 9 bits.
	PhaseInt
)

// phaseScale is the PhaseInt accumulator scale: 512 table entries times a
// 16-bit fractional part.
const phaseScale = 512.0 * 65536.0

// Channel is one simulated satellite signal: spreading code, carrier and
// code NCO state, and the navigation message word ring it is streaming.
// A channel is allocated iff PRN != 0.
type Channel struct {
	PRN int
	CA  [cacode.SeqLen]int

	FCarr float64 // carrier Doppler (Hz)
	FCode float64 // code rate (chips/s)

	// Carrier phase, one of the two representations.
	CarrPhase     float64
	CarrPhaseI    uint32
	CarrPhaseStep int32

	CodePhase float64 // chips

	G0 gpstime.Time // data bit reference time

	Sbf   navmsg.Subframes
	Words navmsg.Words

	IWord int
	IBit  int
	ICode int

	DataBit int // current data bit, +/-1
	CodeCA  int // current code chip, +/-1

	AzEl geodesy.AzEl
	Rho0 orbit.Range
}

// updateCodePhase refreshes the channel's NCO rates and counters from a
// fresh pseudorange rho1 observed dt seconds after Rho0.
//
// The code-phase and word/bit/code cursors are re-derived from the data
// bit reference time G0 so that the message stream stays aligned with the
// pseudorange: the signal leaving the satellite now arrives range/c
// seconds later. The +6 s term parks the cursor inside the ring's head
// subframe, which holds the previous frame's tail.
func (c *Channel) updateCodePhase(rho1 orbit.Range, dt float64) {
	rhorate := (rho1.Range - c.Rho0.Range) / dt

	c.FCarr = -rhorate / geodesy.LambdaL1
	c.FCode = geodesy.CodeFreq + c.FCarr*geodesy.CarrToCode

	ms := (c.Rho0.T.Sub(c.G0)+6.0-c.Rho0.Range/geodesy.SpeedOfLight) * 1000.0

	ims := int(ms)
	c.CodePhase = (ms - float64(ims)) * cacode.SeqLen

	c.IWord = ims / 600 // one word is 30 bits, 600 ms
	ims -= c.IWord * 600

	c.IBit = ims / 20 // one bit is 20 codes, 20 ms
	ims -= c.IBit * 20

	c.ICode = ims // one code period is 1 ms

	c.CodeCA = c.CA[int(c.CodePhase)]*2 - 1
	c.DataBit = int(c.Words[c.IWord]>>(29-c.IBit)&0x1)*2 - 1

	c.Rho0 = rho1
}

// initPhase seeds the carrier phase from the allocation-time geometry.
// The reference r_ref is the range from the ECEF origin, which pins the
// phase pattern to the satellite rather than the receiver.
func (c *Channel) initPhase(rXyz, rRef float64, mode PhaseMode) {
	phase := (2.0*rRef - rXyz) / geodesy.LambdaL1
	phase -= math.Floor(phase)

	if mode == PhaseFloat {
		c.CarrPhase = phase
	} else {
		c.CarrPhaseI = uint32(phaseScale * phase)
	}
}
