// Package geodesy provides WGS-84 coordinate transformations between
// Earth-centered Earth-fixed (ECEF), geodetic, and local tangent frames,
// plus the small vector algebra the orbit and range computations need.
package geodesy

import "math"

// Physical constants shared across the simulator (ICD-GPS-200 conventional
// values and WGS-84 ellipsoid parameters).
const (
	SpeedOfLight = 2.99792458e8   // m/s
	GMEarth      = 3.986005e14    // m^3/s^2
	OmegaEarth   = 7.2921151467e-5 // rad/s

	WGS84Radius       = 6378137.0
	WGS84Eccentricity = 0.0818191908426

	// GPS L1 carrier and C/A code.
	CarrFreq   = 1575.42e6         // Hz
	CodeFreq   = 1.023e6           // chips/s
	CarrToCode = 1.0 / 1540.0      // code chips per carrier cycle
	LambdaL1   = 0.190293672798365 // m

	R2D = 57.2957795131
)

// Vec3 is a 3-component double vector in whatever frame the caller keeps it.
type Vec3 [3]float64

// Sub returns v - u.
func (v Vec3) Sub(u Vec3) Vec3 {
	return Vec3{v[0] - u[0], v[1] - u[1], v[2] - u[2]}
}

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// Dot returns the dot product of v and u.
func (v Vec3) Dot(u Vec3) float64 {
	return v[0]*u[0] + v[1]*u[1] + v[2]*u[2]
}

// LLH is a geodetic position: latitude and longitude in radians, height in
// meters above the ellipsoid.
type LLH struct {
	Lat, Lon, Hgt float64
}

// Matrix3 is a row-major 3x3 matrix.
type Matrix3 [3][3]float64

// XYZToLLH converts an ECEF position into geodetic coordinates by fixed-point
// iteration on the ellipsoid normal. Inputs with a norm below 1 mm are
// degenerate and map to lat = lon = 0, height = -a.
func XYZToLLH(xyz Vec3) LLH {
	const eps = 1.0e-3

	a := WGS84Radius
	e2 := WGS84Eccentricity * WGS84Eccentricity

	if xyz.Norm() < eps {
		return LLH{Hgt: -a}
	}

	x, y, z := xyz[0], xyz[1], xyz[2]
	rho2 := x*x + y*y
	dz := e2 * z

	var zdz, nh, n float64
	for {
		zdz = z + dz
		nh = math.Sqrt(rho2 + zdz*zdz)
		slat := zdz / nh
		n = a / math.Sqrt(1.0-e2*slat*slat)
		dzNew := n * e2 * slat

		if math.Abs(dz-dzNew) < eps {
			break
		}
		dz = dzNew
	}

	return LLH{
		Lat: math.Atan2(zdz, math.Sqrt(rho2)),
		Lon: math.Atan2(y, x),
		Hgt: nh - n,
	}
}

// LLHToXYZ converts geodetic coordinates into an ECEF position.
func LLHToXYZ(llh LLH) Vec3 {
	a := WGS84Radius
	e := WGS84Eccentricity
	e2 := e * e

	clat := math.Cos(llh.Lat)
	slat := math.Sin(llh.Lat)
	clon := math.Cos(llh.Lon)
	slon := math.Sin(llh.Lon)
	d := e * slat

	n := a / math.Sqrt(1.0-d*d)
	nph := n + llh.Hgt

	tmp := nph * clat
	return Vec3{
		tmp * clon,
		tmp * slon,
		((1.0-e2)*n + llh.Hgt) * slat,
	}
}

// LTCMatrix returns the local tangent coordinate basis at llh, mapping ECEF
// deltas into the North-East-Up frame via ECEFToNEU.
func LTCMatrix(llh LLH) Matrix3 {
	slat := math.Sin(llh.Lat)
	clat := math.Cos(llh.Lat)
	slon := math.Sin(llh.Lon)
	clon := math.Cos(llh.Lon)

	return Matrix3{
		{-slat * clon, -slat * slon, clat},
		{-slon, clon, 0.0},
		{clat * clon, clat * slon, slat},
	}
}

// ECEFToNEU rotates an ECEF delta vector into North-East-Up components using
// the basis from LTCMatrix.
func ECEFToNEU(xyz Vec3, t Matrix3) Vec3 {
	return Vec3{
		t[0][0]*xyz[0] + t[0][1]*xyz[1] + t[0][2]*xyz[2],
		t[1][0]*xyz[0] + t[1][1]*xyz[1] + t[1][2]*xyz[2],
		t[2][0]*xyz[0] + t[2][1]*xyz[1] + t[2][2]*xyz[2],
	}
}

// AzEl holds an azimuth in [0, 2pi) and an elevation in [-pi/2, pi/2],
// both in radians.
type AzEl struct {
	Az, El float64
}

// NEUToAzEl converts a North-East-Up vector into azimuth and elevation.
func NEUToAzEl(neu Vec3) AzEl {
	az := math.Atan2(neu[1], neu[0])
	if az < 0.0 {
		az += 2.0 * math.Pi
	}

	ne := math.Sqrt(neu[0]*neu[0] + neu[1]*neu[1])
	return AzEl{Az: az, El: math.Atan2(neu[2], ne)}
}
