package motion

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/gnsslab/plutosim/internal/geodesy"
)

func TestStatic(t *testing.T) {
	xyz := geodesy.Vec3{-3967283.154, 3342586.885, 3673964.439}
	s := Static(xyz)

	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
	for _, i := range []int{0, 1, 99} {
		if s.Position(i) != xyz {
			t.Errorf("Position(%d) = %v", i, s.Position(i))
		}
	}
}

func TestReadUserMotion(t *testing.T) {
	csv := "0.0,-3967283.154,3342586.885,3673964.439\n" +
		"0.1,-3967283.254,3342586.885,3673964.439\n" +
		"0.2,-3967283.354,3342586.885,3673964.439\n"

	tr, err := ReadUserMotion(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadUserMotion: %v", err)
	}

	if tr.Len() != 3 {
		t.Fatalf("Len = %d, want 3", tr.Len())
	}
	if got := tr.Position(1)[0]; got != -3967283.254 {
		t.Errorf("Position(1)[0] = %v", got)
	}
	// Index wraps past the end.
	if tr.Position(3) != tr.Position(0) {
		t.Errorf("wrap: Position(3) = %v", tr.Position(3))
	}
}

func TestReadUserMotionErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"short row", "0.0,1.0,2.0\n"},
		{"bad number", "0.0,a,b,c\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadUserMotion(strings.NewReader(tt.in)); err == nil {
				t.Error("want error")
			}
		})
	}
}

func TestReadUserMotionCap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < MaxPoints+100; i++ {
		fmt.Fprintf(&b, "%.1f,1.0,2.0,3.0\n", float64(i)/10)
	}

	tr, err := ReadUserMotion(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("ReadUserMotion: %v", err)
	}
	if tr.Len() != MaxPoints {
		t.Errorf("Len = %d, want %d", tr.Len(), MaxPoints)
	}
}

func TestReadNMEAGGA(t *testing.T) {
	// Tokyo station, 35.681298 N 139.766247 E.
	gga := "$GPGGA,123519,3540.8779,N,13945.9748,E,1,08,0.9,10.0,M,39.0,M,,*47\n" +
		"$GPRMC,123519,A,3540.8779,N,13945.9748,E,022.4,084.4,230394,003.1,W*6A\n" +
		"$GPGGA,123520,3540.8779,S,13945.9748,W,1,08,0.9,10.0,M,39.0,M,,*47\n"

	tr, err := ReadNMEAGGA(strings.NewReader(gga))
	if err != nil {
		t.Fatalf("ReadNMEAGGA: %v", err)
	}
	if tr.Len() != 2 {
		t.Fatalf("Len = %d, want 2 (RMC skipped)", tr.Len())
	}

	llh := geodesy.XYZToLLH(tr.Position(0))
	if math.Abs(llh.Lat*geodesy.R2D-35.681298) > 1e-4 {
		t.Errorf("lat = %v deg", llh.Lat*geodesy.R2D)
	}
	if math.Abs(llh.Lon*geodesy.R2D-139.766247) > 1e-4 {
		t.Errorf("lon = %v deg", llh.Lon*geodesy.R2D)
	}
	if math.Abs(llh.Hgt-10.0) > 0.1 {
		t.Errorf("hgt = %v", llh.Hgt)
	}

	// Southern/western fix mirrors the signs.
	llh2 := geodesy.XYZToLLH(tr.Position(1))
	if llh2.Lat >= 0 || llh2.Lon >= 0 {
		t.Errorf("S/W fix = %+v", llh2)
	}
}

func TestReadNMEAGGAEmpty(t *testing.T) {
	if _, err := ReadNMEAGGA(strings.NewReader("$GPRMC,x\n")); err == nil {
		t.Error("want error for stream without GGA fixes")
	}
}
