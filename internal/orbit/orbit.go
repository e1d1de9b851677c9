// Package orbit models broadcast-ephemeris satellite motion and the
// signal path between satellite and receiver: position/velocity/clock
// from the Keplerian elements, pseudorange with light-time and Earth
// rotation corrections, Klobuchar ionospheric delay, and visibility.
package orbit

import (
	"math"

	"github.com/gnsslab/plutosim/internal/geodesy"
	"github.com/gnsslab/plutosim/internal/gpstime"
	"github.com/gnsslab/plutosim/internal/rinex"
)

// Range is one satellite observation: the pseudorange and its geometry at
// a given reception time.
type Range struct {
	T         gpstime.Time // time of application
	Range     float64      // pseudorange (m)
	Rate      float64      // pseudorange rate (m/s)
	D         float64      // geometric distance (m)
	AzEl      geodesy.AzEl
	IonoDelay float64 // m
}

// SatPos computes a satellite's ECEF position, velocity, and clock bias
// and rate at time t from its broadcast ephemeris.
//
// Velocity follows the broadcast-ephemeris differentiation in the NGS
// bc_velo note; the clock includes the relativistic eccentricity term and
// the group delay.
func SatPos(eph *rinex.Ephemeris, t gpstime.Time) (pos, vel geodesy.Vec3, clkBias, clkRate float64) {
	tk := t.Sec - eph.TOE.Sec
	if tk > gpstime.SecondsInHalfWeek {
		tk -= gpstime.SecondsInWeek
	} else if tk < -gpstime.SecondsInHalfWeek {
		tk += gpstime.SecondsInWeek
	}

	mk := eph.M0 + eph.N*tk

	// Kepler's equation by Newton iteration.
	ek := mk
	ekold := ek + 1.0
	oneMinusECosE := 0.0
	for math.Abs(ek-ekold) > 1.0e-14 {
		ekold = ek
		oneMinusECosE = 1.0 - eph.Ecc*math.Cos(ekold)
		ek = ek + (mk-ekold+eph.Ecc*math.Sin(ekold))/oneMinusECosE
	}

	sek := math.Sin(ek)
	cek := math.Cos(ek)

	ekdot := eph.N / oneMinusECosE

	relativistic := -4.442807633e-10 * eph.Ecc * eph.SqrtA * sek

	pk := math.Atan2(eph.Sq1e2*sek, cek-eph.Ecc) + eph.Aop
	pkdot := eph.Sq1e2 * ekdot / oneMinusECosE

	s2pk := math.Sin(2.0 * pk)
	c2pk := math.Cos(2.0 * pk)

	uk := pk + eph.Cus*s2pk + eph.Cuc*c2pk
	suk := math.Sin(uk)
	cuk := math.Cos(uk)
	ukdot := pkdot * (1.0 + 2.0*(eph.Cus*c2pk-eph.Cuc*s2pk))

	rk := eph.A*oneMinusECosE + eph.Crc*c2pk + eph.Crs*s2pk
	rkdot := eph.A*eph.Ecc*sek*ekdot + 2.0*pkdot*(eph.Crs*c2pk-eph.Crc*s2pk)

	ik := eph.Inc0 + eph.IDot*tk + eph.Cic*c2pk + eph.Cis*s2pk
	sik := math.Sin(ik)
	cik := math.Cos(ik)
	ikdot := eph.IDot + 2.0*pkdot*(eph.Cis*c2pk-eph.Cic*s2pk)

	xpk := rk * cuk
	ypk := rk * suk
	xpkdot := rkdot*cuk - ypk*ukdot
	ypkdot := rkdot*suk + xpk*ukdot

	ok := eph.Omg0 + tk*eph.OmgKDot - geodesy.OmegaEarth*eph.TOE.Sec
	sok := math.Sin(ok)
	cok := math.Cos(ok)

	pos[0] = xpk*cok - ypk*cik*sok
	pos[1] = xpk*sok + ypk*cik*cok
	pos[2] = ypk * sik

	tmp := ypkdot*cik - ypk*sik*ikdot

	vel[0] = -eph.OmgKDot*pos[1] + xpkdot*cok - tmp*sok
	vel[1] = eph.OmgKDot*pos[0] + xpkdot*sok + tmp*cok
	vel[2] = ypk*cik*ikdot + ypkdot*sik

	// Satellite clock correction, anchored at TOC.
	tk = t.Sec - eph.TOC.Sec
	if tk > gpstime.SecondsInHalfWeek {
		tk -= gpstime.SecondsInWeek
	} else if tk < -gpstime.SecondsInHalfWeek {
		tk += gpstime.SecondsInWeek
	}

	clkBias = eph.Af0 + tk*(eph.Af1+tk*eph.Af2) + relativistic - eph.TGD
	clkRate = eph.Af1 + 2.0*tk*eph.Af2

	return pos, vel, clkBias, clkRate
}

// IonosphericDelay evaluates the Klobuchar model at the receiver position
// for a satellite at azel. With the model disabled the delay is zero;
// with invalid broadcast coefficients only the 5 ns obliquity fallback
// applies.
func IonosphericDelay(ionoutc *rinex.IonoUTC, t gpstime.Time, llh geodesy.LLH, azel geodesy.AzEl) float64 {
	if !ionoutc.Enable {
		return 0.0
	}

	// Elevation and user coordinates in semicircles.
	e := azel.El / math.Pi
	phiU := llh.Lat / math.Pi
	lamU := llh.Lon / math.Pi

	// Obliquity factor.
	f := 1.0 + 16.0*math.Pow(0.53-e, 3.0)

	if !ionoutc.Valid {
		return f * 5.0e-9 * geodesy.SpeedOfLight
	}

	// Earth's central angle between the user and the ionospheric pierce
	// point projection (semicircles).
	psi := 0.0137/(e+0.11) - 0.022

	phiI := phiU + psi*math.Cos(azel.Az)
	if phiI > 0.416 {
		phiI = 0.416
	} else if phiI < -0.416 {
		phiI = -0.416
	}

	lamI := lamU + psi*math.Sin(azel.Az)/math.Cos(phiI*math.Pi)

	// Geomagnetic latitude of the pierce point (mean ionospheric height
	// 350 km assumed).
	phiM := phiI + 0.064*math.Cos((lamI-1.617)*math.Pi)
	phiM2 := phiM * phiM
	phiM3 := phiM2 * phiM

	amp := ionoutc.Alpha0 + ionoutc.Alpha1*phiM + ionoutc.Alpha2*phiM2 + ionoutc.Alpha3*phiM3
	if amp < 0.0 {
		amp = 0.0
	}

	per := ionoutc.Beta0 + ionoutc.Beta1*phiM + ionoutc.Beta2*phiM2 + ionoutc.Beta3*phiM3
	if per < 72000.0 {
		per = 72000.0
	}

	// Local time at the pierce point.
	tl := gpstime.SecondsInDay/2.0*lamI + t.Sec
	for tl >= gpstime.SecondsInDay {
		tl -= gpstime.SecondsInDay
	}
	for tl < 0 {
		tl += gpstime.SecondsInDay
	}

	x := 2.0 * math.Pi * (tl - 50400.0) / per

	if math.Abs(x) < 1.57 {
		x2 := x * x
		x4 := x2 * x2
		return f * (5.0e-9 + amp*(1.0-x2/2.0+x4/24.0)) * geodesy.SpeedOfLight
	}
	return f * 5.0e-9 * geodesy.SpeedOfLight
}

// ComputeRange fills rho with the pseudorange observation of eph from the
// receiver at xyz for reception time t.
func ComputeRange(rho *Range, eph *rinex.Ephemeris, ionoutc *rinex.IonoUTC, t gpstime.Time, xyz geodesy.Vec3) {
	pos, vel, clkBias, _ := SatPos(eph, t)

	// Receiver-to-satellite vector and light time.
	los := pos.Sub(xyz)
	tau := los.Norm() / geodesy.SpeedOfLight

	// Extrapolate the satellite position back to the transmission time.
	pos[0] -= vel[0] * tau
	pos[1] -= vel[1] * tau
	pos[2] -= vel[2] * tau

	// Earth rotation during the light time; the velocity change is
	// negligible.
	xrot := pos[0] + pos[1]*geodesy.OmegaEarth*tau
	yrot := pos[1] - pos[0]*geodesy.OmegaEarth*tau
	pos[0] = xrot
	pos[1] = yrot

	los = pos.Sub(xyz)
	r := los.Norm()
	rho.D = r

	rho.Range = r - geodesy.SpeedOfLight*clkBias
	rho.Rate = vel.Dot(los) / r
	rho.T = t

	llh := geodesy.XYZToLLH(xyz)
	tmat := geodesy.LTCMatrix(llh)
	neu := geodesy.ECEFToNEU(los, tmat)
	rho.AzEl = geodesy.NEUToAzEl(neu)

	rho.IonoDelay = IonosphericDelay(ionoutc, t, llh, rho.AzEl)
	rho.Range += rho.IonoDelay
}

// Visibility results.
const (
	VisInvalid   = -1 // no valid ephemeris
	VisInvisible = 0
	VisVisible   = 1
)

// CheckVisibility reports whether the satellite is above the elevation
// mask (degrees) as seen from xyz, filling azel as a side effect.
func CheckVisibility(eph *rinex.Ephemeris, t gpstime.Time, xyz geodesy.Vec3, maskDeg float64, azel *geodesy.AzEl) int {
	if !eph.Valid {
		return VisInvalid
	}

	llh := geodesy.XYZToLLH(xyz)
	tmat := geodesy.LTCMatrix(llh)

	pos, _, _, _ := SatPos(eph, t)
	neu := geodesy.ECEFToNEU(pos.Sub(xyz), tmat)
	*azel = geodesy.NEUToAzEl(neu)

	if azel.El*geodesy.R2D > maskDeg {
		return VisVisible
	}
	return VisInvisible
}
