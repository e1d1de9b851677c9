package cacode

import "testing"

func TestCodeBalance(t *testing.T) {
	// Gold codes carry 512 ones and 511 zeros.
	for prn := 1; prn <= 32; prn++ {
		ca := Code(prn)
		ones := 0
		for _, c := range ca {
			if c == 1 {
				ones++
			} else if c != 0 {
				t.Fatalf("PRN %d: chip value %d", prn, c)
			}
		}
		if ones != 512 {
			t.Errorf("PRN %d: %d ones, want 512", prn, ones)
		}
	}
}

func TestCodeFirstChipsPRN1(t *testing.T) {
	// The first ten chips of PRN 1 are the well-known octal 1440 preamble.
	want := [10]int{1, 1, 0, 0, 1, 0, 0, 0, 0, 0}
	ca := Code(1)
	for i, w := range want {
		if ca[i] != w {
			t.Fatalf("PRN 1 chip %d = %d, want %d (got %v)", i, ca[i], w, ca[:10])
		}
	}
}

func TestCodeCrossCorrelation(t *testing.T) {
	// Gold code cross-correlation over a full period is three-valued:
	// {-65, -1, 63} in bipolar terms.
	allowed := map[int]bool{-65: true, -1: true, 63: true}

	bipolar := func(prn int) [SeqLen]int {
		ca := Code(prn)
		var b [SeqLen]int
		for i, c := range ca {
			b[i] = 2*c - 1
		}
		return b
	}

	pairs := [][2]int{{1, 2}, {3, 7}, {11, 29}, {17, 32}, {5, 23}}
	for _, p := range pairs {
		a := bipolar(p[0])
		b := bipolar(p[1])
		sum := 0
		for i := 0; i < SeqLen; i++ {
			sum += a[i] * b[i]
		}
		if !allowed[sum] {
			t.Errorf("PRN %d x PRN %d correlation = %d", p[0], p[1], sum)
		}
	}
}

func TestCodeOutOfRange(t *testing.T) {
	for _, prn := range []int{0, -1, 33} {
		ca := Code(prn)
		for i, c := range ca {
			if c != 0 {
				t.Fatalf("PRN %d chip %d = %d, want 0", prn, i, c)
			}
		}
	}
}
