package sim

import (
	"github.com/gnsslab/plutosim/internal/cacode"
	"github.com/gnsslab/plutosim/internal/geodesy"
	"github.com/gnsslab/plutosim/internal/gpstime"
	"github.com/gnsslab/plutosim/internal/navmsg"
	"github.com/gnsslab/plutosim/internal/orbit"
	"github.com/gnsslab/plutosim/internal/rinex"
)

// allocateChannels runs one scheduler pass over the satellite table:
// newly visible satellites claim the first idle channel, satellites that
// have set release theirs. alloc maps satellite index to channel index or
// -1. Returns the number of visible satellites.
//
// Allocation always uses a 0 degree elevation threshold.
func allocateChannels(chans *[MaxChannels]Channel, alloc *[rinex.MaxSat]int,
	set *rinex.Set, ionoutc *rinex.IonoUTC, grx gpstime.Time,
	xyz geodesy.Vec3, mode PhaseMode) int {

	nsat := 0
	var azel geodesy.AzEl

	for sv := 0; sv < rinex.MaxSat; sv++ {
		eph := &set[sv]

		if orbit.CheckVisibility(eph, grx, xyz, 0.0, &azel) != orbit.VisVisible {
			if alloc[sv] >= 0 {
				// Satellite has set: release its channel.
				chans[alloc[sv]].PRN = 0
				alloc[sv] = -1
			}
			continue
		}

		nsat++

		if alloc[sv] >= 0 {
			continue // already on air
		}

		for i := 0; i < MaxChannels; i++ {
			if chans[i].PRN != 0 {
				continue
			}

			ch := &chans[i]
			*ch = Channel{
				PRN:  sv + 1,
				AzEl: azel,
			}

			ch.CA = cacode.Code(ch.PRN)
			ch.Sbf = navmsg.EphToSubframes(eph, ionoutc)
			ch.G0 = navmsg.Generate(grx, &ch.Sbf, &ch.Words, true)

			// Initial pseudorange, and a second range from the ECEF
			// origin to seed the carrier phase.
			var rho orbit.Range
			orbit.ComputeRange(&rho, eph, ionoutc, grx, xyz)
			ch.Rho0 = rho
			rXyz := rho.Range

			orbit.ComputeRange(&rho, eph, ionoutc, grx, geodesy.Vec3{})
			ch.initPhase(rXyz, rho.Range, mode)

			alloc[sv] = i
			break
		}
	}

	return nsat
}
