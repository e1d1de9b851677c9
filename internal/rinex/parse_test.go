package rinex

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
)

// hline pads a header body out to column 61 and appends the label.
func hline(body, label string) string {
	return fmt.Sprintf("%-60s%s", body, label)
}

// v2Block renders one RINEX v2 ephemeris block for a satellite.
func v2Block(prn, yy, m, d, hh, mi int, toeSec float64, week int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%2d %02d %2d %2d %2d %2d %4.1f%19.12E%19.12E%19.12E\n",
		prn, yy, m, d, hh, mi, 0.0, -2.745445817709e-05, -3.524291969370e-12, 0.0)
	// orbit 1: IODE, Crs, Delta n, M0
	fmt.Fprintf(&b, "   %19.12E%19.12E%19.12E%19.12E\n",
		83.0, -95.40625, 4.464828675455e-09, -2.103471207695e-01)
	// orbit 2: Cuc, e, Cus, sqrt(A)
	fmt.Fprintf(&b, "   %19.12E%19.12E%19.12E%19.12E\n",
		-4.785880446434e-06, 4.343502223492e-03, 8.795037865639e-06, 5.153683042526e+03)
	// orbit 3: Toe, Cic, OMEGA, Cis
	fmt.Fprintf(&b, "   %19.12E%19.12E%19.12E%19.12E\n",
		toeSec, -1.080334186554e-07, -2.296190735360e+00, 1.583248376846e-07)
	// orbit 4: i0, Crc, omega, OMEGA DOT
	fmt.Fprintf(&b, "   %19.12E%19.12E%19.12E%19.12E\n",
		9.653868987161e-01, 2.383125000000e+02, -9.282577519570e-01, -8.082122834704e-09)
	// orbit 5: IDOT, codes on L2, GPS week
	fmt.Fprintf(&b, "   %19.12E%19.12E%19.12E%19.12E\n",
		-4.239462337716e-10, 1.0, float64(week), 0.0)
	// orbit 6: SV accuracy, SV health, TGD, IODC
	fmt.Fprintf(&b, "   %19.12E%19.12E%19.12E%19.12E\n",
		2.0, 1.0, -1.024454832077e-08, 83.0)
	// orbit 7: transmission time
	fmt.Fprintf(&b, "   %19.12E%19.12E%19.12E%19.12E\n",
		5.184000000000e+05, 4.0, 0.0, 0.0)

	return b.String()
}

func v2Header() string {
	var b strings.Builder

	b.WriteString(hline(fmt.Sprintf("%9.2f%11s%-20s", 2.10, "", "N: GPS NAV DATA"), "RINEX VERSION / TYPE") + "\n")
	b.WriteString(hline(fmt.Sprintf("%-20s%-20s%-20s", "CCRINEXN V1.6.0 UX", "CDDIS", "20-DEC-14 01:21"), "PGM / RUN BY / DATE") + "\n")
	b.WriteString(hline(fmt.Sprintf("  %12.4E%12.4E%12.4E%12.4E", 1.1176e-08, 1.4901e-08, -5.9605e-08, -1.1921e-07), "ION ALPHA") + "\n")
	b.WriteString(hline(fmt.Sprintf("  %12.4E%12.4E%12.4E%12.4E", 9.0112e+04, 1.6384e+04, -1.9661e+05, -6.5536e+04), "ION BETA") + "\n")
	b.WriteString(hline(fmt.Sprintf("   %19.12E%19.12E%9d%9d", 9.313225746155e-10, 8.881784197001e-16, 552960, 1823), "DELTA-UTC: A0,A1,T,W") + "\n")
	b.WriteString(hline(fmt.Sprintf("%6d", 16), "LEAP SECONDS") + "\n")
	b.WriteString(hline("", "END OF HEADER") + "\n")

	return b.String()
}

func TestReadNavV2(t *testing.T) {
	var b strings.Builder
	b.WriteString(v2Header())
	b.WriteString(v2Block(6, 14, 12, 20, 0, 0, 518400, 1823))
	b.WriteString(v2Block(12, 14, 12, 20, 0, 0, 518400, 1823))
	// Two hours later: starts a second set.
	b.WriteString(v2Block(6, 14, 12, 20, 2, 0, 525600, 1823))

	nav, err := ReadNav(strings.NewReader(b.String()), false)
	if err != nil {
		t.Fatalf("ReadNav: %v", err)
	}

	if len(nav.Sets) != 2 {
		t.Fatalf("sets = %d, want 2", len(nav.Sets))
	}

	eph := &nav.Sets[0][5] // PRN 6
	if !eph.Valid {
		t.Fatal("PRN 6 not valid")
	}
	if eph.TOC.Week != 1823 || eph.TOC.Sec != 518400 {
		t.Errorf("TOC = (%d, %v), want (1823, 518400)", eph.TOC.Week, eph.TOC.Sec)
	}
	if eph.TOE.Week != 1823 || eph.TOE.Sec != 518400 {
		t.Errorf("TOE = (%d, %v)", eph.TOE.Week, eph.TOE.Sec)
	}
	if eph.IODE != 83 || eph.IODC != 83 {
		t.Errorf("IODE/IODC = %d/%d, want 83/83", eph.IODE, eph.IODC)
	}
	if math.Abs(eph.SqrtA-5.153683042526e+03) > 1e-6 {
		t.Errorf("SqrtA = %v", eph.SqrtA)
	}

	// Health 1 gets the MSB flag.
	if eph.SVHealth != 33 {
		t.Errorf("SVHealth = %d, want 33", eph.SVHealth)
	}

	// Derived values.
	if math.Abs(eph.A-eph.SqrtA*eph.SqrtA) > 1e-6 {
		t.Errorf("A = %v", eph.A)
	}
	wantN := math.Sqrt(3.986005e14/(eph.A*eph.A*eph.A)) + eph.DeltaN
	if math.Abs(eph.N-wantN) > 1e-18 {
		t.Errorf("N = %v, want %v", eph.N, wantN)
	}

	if !nav.Sets[1][5].Valid || nav.Sets[1][5].TOC.Sec != 525600 {
		t.Errorf("second set PRN 6: %+v", nav.Sets[1][5].TOC)
	}

	// Iono/UTC header was complete.
	iu := nav.IonoUTC
	if !iu.Valid {
		t.Fatal("iono/utc not valid")
	}
	if math.Abs(iu.Alpha0-1.1176e-08) > 1e-12 || math.Abs(iu.Beta0-9.0112e+04) > 1e-2 {
		t.Errorf("alpha0/beta0 = %v/%v", iu.Alpha0, iu.Beta0)
	}
	if iu.Tot != 552960 || iu.Wnt != 1823 || iu.Dtls != 16 {
		t.Errorf("tot/wnt/dtls = %d/%d/%d", iu.Tot, iu.Wnt, iu.Dtls)
	}
	if nav.Date == "" {
		t.Error("header date not captured")
	}
}

func TestReadNavV2IncompleteIono(t *testing.T) {
	var b strings.Builder
	b.WriteString(hline(fmt.Sprintf("%9.2f%11s%-20s", 2.10, "", "N: GPS NAV DATA"), "RINEX VERSION / TYPE") + "\n")
	b.WriteString(hline(fmt.Sprintf("  %12.4E%12.4E%12.4E%12.4E", 1.1176e-08, 1.4901e-08, -5.9605e-08, -1.1921e-07), "ION ALPHA") + "\n")
	b.WriteString(hline("", "END OF HEADER") + "\n")
	b.WriteString(v2Block(6, 14, 12, 20, 0, 0, 518400, 1823))

	nav, err := ReadNav(strings.NewReader(b.String()), false)
	if err != nil {
		t.Fatalf("ReadNav: %v", err)
	}
	if nav.IonoUTC.Valid {
		t.Error("iono/utc marked valid with missing header lines")
	}
	if !nav.Sets[0][5].Valid {
		t.Error("ephemeris should still parse")
	}
}

func TestReadNavV2Gzip(t *testing.T) {
	var plain strings.Builder
	plain.WriteString(v2Header())
	plain.WriteString(v2Block(6, 14, 12, 20, 0, 0, 518400, 1823))

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte(plain.String())); err != nil {
		t.Fatal(err)
	}
	gz.Close()

	nav, err := ReadNav(&buf, false)
	if err != nil {
		t.Fatalf("ReadNav(gzip): %v", err)
	}
	if !nav.Sets[0][5].Valid {
		t.Error("ephemeris not parsed from gzip stream")
	}
}

func TestReadNavVersionMismatch(t *testing.T) {
	v2 := v2Header()

	if _, err := ReadNav(strings.NewReader(v2), true); !errors.Is(err, ErrVersion) {
		t.Errorf("v3 flag on v2 file: err = %v, want ErrVersion", err)
	}

	obs := hline(fmt.Sprintf("%9.2f%11s%-20s", 2.10, "", "O"), "RINEX VERSION / TYPE") + "\n"
	if _, err := ReadNav(strings.NewReader(obs), false); !errors.Is(err, ErrSystem) {
		t.Errorf("observation file: err = %v, want ErrSystem", err)
	}
}

func TestReadNavTruncatedBlock(t *testing.T) {
	var b strings.Builder
	b.WriteString(v2Header())
	block := v2Block(6, 14, 12, 20, 0, 0, 518400, 1823)
	lines := strings.SplitAfter(block, "\n")
	for _, l := range lines[:3] { // first line plus two orbit lines only
		b.WriteString(l)
	}

	if _, err := ReadNav(strings.NewReader(b.String()), false); !errors.Is(err, ErrTruncated) {
		t.Errorf("err = %v, want ErrTruncated", err)
	}
}

func TestReadNavV3(t *testing.T) {
	var b strings.Builder

	b.WriteString(hline(fmt.Sprintf("%9.2f%11s%-20s%-20s", 3.02, "", "N: GNSS NAV DATA", "G: GPS"), "RINEX VERSION / TYPE") + "\n")
	b.WriteString(hline(fmt.Sprintf("GPSA %12.4E%12.4E%12.4E%12.4E", 1.1176e-08, 1.4901e-08, -5.9605e-08, -1.1921e-07), "IONOSPHERIC CORR") + "\n")
	b.WriteString(hline(fmt.Sprintf("GPSB %12.4E%12.4E%12.4E%12.4E", 9.0112e+04, 1.6384e+04, -1.9661e+05, -6.5536e+04), "IONOSPHERIC CORR") + "\n")
	b.WriteString(hline(fmt.Sprintf("GPUT %17.10E%16.9E%7d%6d", 9.3132257462e-10, 8.881784197e-16, 552960, 1823), "TIME SYSTEM CORR") + "\n")
	b.WriteString(hline(fmt.Sprintf("%6d", 16), "LEAP SECONDS") + "\n")
	b.WriteString(hline("", "END OF HEADER") + "\n")

	fmt.Fprintf(&b, "G%02d %4d %02d %02d %02d %02d %02d%19.12E%19.12E%19.12E\n",
		6, 2014, 12, 20, 0, 0, 0, -2.745445817709e-05, -3.524291969370e-12, 0.0)
	fmt.Fprintf(&b, "    %19.12E%19.12E%19.12E%19.12E\n",
		83.0, -95.40625, 4.464828675455e-09, -2.103471207695e-01)
	fmt.Fprintf(&b, "    %19.12E%19.12E%19.12E%19.12E\n",
		-4.785880446434e-06, 4.343502223492e-03, 8.795037865639e-06, 5.153683042526e+03)
	fmt.Fprintf(&b, "    %19.12E%19.12E%19.12E%19.12E\n",
		518400.0, -1.080334186554e-07, -2.296190735360e+00, 1.583248376846e-07)
	fmt.Fprintf(&b, "    %19.12E%19.12E%19.12E%19.12E\n",
		9.653868987161e-01, 2.383125000000e+02, -9.282577519570e-01, -8.082122834704e-09)
	fmt.Fprintf(&b, "    %19.12E%19.12E%19.12E%19.12E\n",
		-4.239462337716e-10, 1.0, 1823.0, 0.0)
	fmt.Fprintf(&b, "    %19.12E%19.12E%19.12E%19.12E\n",
		2.0, 0.0, -1.024454832077e-08, 83.0)
	fmt.Fprintf(&b, "    %19.12E%19.12E%19.12E%19.12E\n",
		5.184000000000e+05, 4.0, 0.0, 0.0)
	// A GLONASS record must be skipped outright.
	b.WriteString("R01 2014 12 20 00 00 00 0.0 0.0 0.0\n")

	nav, err := ReadNav(strings.NewReader(b.String()), true)
	if err != nil {
		t.Fatalf("ReadNav: %v", err)
	}

	eph := &nav.Sets[0][5]
	if !eph.Valid {
		t.Fatal("PRN 6 not valid")
	}
	if eph.TOE.Sec != 518400 || eph.TOE.Week != 1823 {
		t.Errorf("TOE = %+v", eph.TOE)
	}
	if eph.SVHealth != 0 {
		t.Errorf("SVHealth = %d, want 0", eph.SVHealth)
	}
	if !nav.IonoUTC.Valid {
		t.Error("iono/utc not valid")
	}
}
