package geodesy

import (
	"math"
	"testing"
)

func TestLLHRoundTrip(t *testing.T) {
	lats := []float64{-89, -60, -35.6, 0, 35.681298, 60, 89}
	lons := []float64{-179, -139, 0, 139.766247, 179}
	hgts := []float64{-1000, 0, 10, 8848, 100000}

	for _, lat := range lats {
		for _, lon := range lons {
			for _, h := range hgts {
				in := LLH{Lat: lat / R2D, Lon: lon / R2D, Hgt: h}
				out := XYZToLLH(LLHToXYZ(in))

				if math.Abs(out.Lat-in.Lat) > 1e-8 {
					t.Fatalf("lat %v: got %v", in.Lat, out.Lat)
				}
				if math.Abs(out.Lon-in.Lon) > 1e-8 {
					t.Fatalf("lon %v: got %v", in.Lon, out.Lon)
				}
				if math.Abs(out.Hgt-in.Hgt) > 1e-2 {
					t.Fatalf("hgt %v: got %v", in.Hgt, out.Hgt)
				}
			}
		}
	}
}

func TestXYZToLLHDegenerate(t *testing.T) {
	got := XYZToLLH(Vec3{0, 0, 0})
	if got.Lat != 0 || got.Lon != 0 || got.Hgt != -WGS84Radius {
		t.Errorf("degenerate input = %+v", got)
	}
}

func TestNEUToAzEl(t *testing.T) {
	tests := []struct {
		name   string
		neu    Vec3
		wantAz float64
		wantEl float64
	}{
		{"due north", Vec3{1, 0, 0}, 0, 0},
		{"due east", Vec3{0, 1, 0}, math.Pi / 2, 0},
		{"due south", Vec3{-1, 0, 0}, math.Pi, 0},
		{"due west", Vec3{0, -1, 0}, 3 * math.Pi / 2, 0},
		{"zenith", Vec3{0, 0, 1}, 0, math.Pi / 2},
		{"north 45 up", Vec3{1, 0, 1}, 0, math.Pi / 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NEUToAzEl(tt.neu)
			if math.Abs(got.Az-tt.wantAz) > 1e-12 {
				t.Errorf("az = %v, want %v", got.Az, tt.wantAz)
			}
			if math.Abs(got.El-tt.wantEl) > 1e-12 {
				t.Errorf("el = %v, want %v", got.El, tt.wantEl)
			}
		})
	}
}

func TestLTCMatrixZenith(t *testing.T) {
	// A point straight above the receiver must come out at elevation pi/2
	// regardless of the site.
	site := LLH{Lat: 35.681298 / R2D, Lon: 139.766247 / R2D, Hgt: 10}
	rx := LLHToXYZ(site)
	up := LLHToXYZ(LLH{Lat: site.Lat, Lon: site.Lon, Hgt: site.Hgt + 1000})

	neu := ECEFToNEU(up.Sub(rx), LTCMatrix(site))
	azel := NEUToAzEl(neu)

	if math.Abs(azel.El-math.Pi/2) > 1e-6 {
		t.Errorf("el = %v, want pi/2", azel.El)
	}
}

func TestVec3Ops(t *testing.T) {
	v := Vec3{3, 4, 12}
	if got := v.Norm(); math.Abs(got-13) > 1e-12 {
		t.Errorf("Norm = %v, want 13", got)
	}
	if got := v.Dot(Vec3{1, 1, 1}); math.Abs(got-19) > 1e-12 {
		t.Errorf("Dot = %v, want 19", got)
	}
	if got := v.Sub(Vec3{1, 2, 3}); got != (Vec3{2, 2, 9}) {
		t.Errorf("Sub = %v", got)
	}
}
