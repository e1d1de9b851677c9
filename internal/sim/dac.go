package sim

import "math"

// DAC models one transmit DAC width as a value: the carrier lookup tables
// plus the gain, offset, and shift applied when quantizing the channel
// sum. The widths differ only in these four pieces.
type DAC struct {
	Cos    [512]int
	Sin    [512]int
	Gain   float64
	Offset int64
	Shift  uint
}

// DAC16 returns the 16-bit DAC model, the default transmit path.
func DAC16() *DAC {
	d := &DAC{
		Cos:    cosTable512,
		Sin:    sinTable512,
		Gain:   18.0,
		Offset: 32,
		Shift:  6,
	}
	return d
}

// DAC8 returns the 8-bit DAC model. Its tables store amplitudes of 250,
// not 255; the headroom is intended.
func DAC8() *DAC {
	d := &DAC{
		Gain:   127.0 / 250.0,
		Offset: 0,
		Shift:  0,
	}
	for i := range d.Sin {
		phi := 2.0 * math.Pi * float64(i) / 512.0
		d.Sin[i] = int(math.Round(250.0 * math.Sin(phi)))
		d.Cos[i] = int(math.Round(250.0 * math.Cos(phi)))
	}
	return d
}
