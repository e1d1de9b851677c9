// Package navmsg assembles the GPS legacy navigation message: the five
// 10-word subframes carrying ephemeris, ionosphere and UTC parameters, the
// 30-bit word parity, and the ring of ready-to-transmit words each channel
// streams at 50 bps.
package navmsg

import (
	"math"
	"math/bits"

	"github.com/gnsslab/plutosim/internal/gpstime"
	"github.com/gnsslab/plutosim/internal/rinex"
)

// Frame geometry.
const (
	NSubframes   = 5
	WordsPerSbf  = 10
	NWords       = (NSubframes + 1) * WordsPerSbf // word ring incl. the tail subframe
	BitsPerWord  = 30
	CodesPerBit  = 20
	FrameSeconds = 30
	SubframeSecs = 6
)

// Field scale factors (ICD-GPS-200 powers of two).
const (
	pow2m5  = 0.03125
	pow2m19 = 1.907348632812500e-6
	pow2m24 = 5.960464477539063e-8
	pow2m27 = 7.450580596923828e-9
	pow2m29 = 1.862645149230957e-9
	pow2m30 = 9.313225746154785e-10
	pow2m31 = 4.656612873077393e-10
	pow2m33 = 1.164153218269348e-10
	pow2m43 = 1.136868377216160e-13
	pow2m50 = 8.881784197001252e-16
	pow2m55 = 2.775557561562891e-17
)

// Subframes holds the raw source words of one frame: the low 30 bits carry
// data, the two uppermost bits stay free for the previous word's D29*/D30*
// link applied before parity.
type Subframes [NSubframes][WordsPerSbf]uint32

// Words is the per-channel ring of parity-complete 30-bit words. It spans
// six subframes so that the modulator can keep reading the tail subframe
// while a fresh frame batch is generated.
type Words [NWords]uint32

// EphToSubframes packs an ephemeris and the iono/UTC parameters into the
// five source subframes. Subframe 4 carries page 18 when the iono/UTC
// record is valid and the almanac placeholder page 25 otherwise.
func EphToSubframes(eph *rinex.Ephemeris, ionoutc *rinex.IonoUTC) Subframes {
	var sbf Subframes

	const (
		ura          = uint32(0)
		dataID       = uint32(1)
		sbf4Page25SV = uint32(63)
		sbf5Page25SV = uint32(51)
		sbf4Page18SV = uint32(56)
	)

	// TODO: use the transmission week number here instead of pinning zero;
	// a receiver aligning its almanac week to WN decodes week 0.
	wn := uint32(0)
	toe := uint32(eph.TOE.Sec / 16.0)
	toc := uint32(eph.TOC.Sec / 16.0)
	iode := uint32(eph.IODE)
	iodc := uint32(eph.IODC)
	deltan := int64(eph.DeltaN / pow2m43 / math.Pi)
	cuc := int64(eph.Cuc / pow2m29)
	cus := int64(eph.Cus / pow2m29)
	cic := int64(eph.Cic / pow2m29)
	cis := int64(eph.Cis / pow2m29)
	crc := int64(eph.Crc / pow2m5)
	crs := int64(eph.Crs / pow2m5)
	ecc := uint32(eph.Ecc / pow2m33)
	sqrta := uint32(eph.SqrtA / pow2m19)
	m0 := int64(eph.M0 / pow2m31 / math.Pi)
	omg0 := int64(eph.Omg0 / pow2m31 / math.Pi)
	inc0 := int64(eph.Inc0 / pow2m31 / math.Pi)
	aop := int64(eph.Aop / pow2m31 / math.Pi)
	omgdot := int64(eph.OmgDot / pow2m43 / math.Pi)
	idot := int64(eph.IDot / pow2m43 / math.Pi)
	af0 := int64(eph.Af0 / pow2m31)
	af1 := int64(eph.Af1 / pow2m43)
	af2 := int64(eph.Af2 / pow2m55)
	tgd := int64(eph.TGD / pow2m31)
	svhlth := uint32(eph.SVHealth)
	codeL2 := uint32(eph.CodeL2)

	wna := uint32(eph.TOE.Week % 256)
	toa := uint32(eph.TOE.Sec / 4096.0)

	// Subframe 1
	sbf[0][0] = 0x8B0000 << 6
	sbf[0][1] = 0x1 << 8
	sbf[0][2] = (wn&0x3FF)<<20 | (codeL2&0x3)<<18 | (ura&0xF)<<14 |
		(svhlth&0x3F)<<8 | uint32(iodc>>8&0x3)<<6
	sbf[0][3] = 0
	sbf[0][4] = 0
	sbf[0][5] = 0
	sbf[0][6] = uint32(tgd&0xFF) << 6
	sbf[0][7] = (iodc&0xFF)<<22 | (toc&0xFFFF)<<6
	sbf[0][8] = uint32(af2&0xFF)<<22 | uint32(af1&0xFFFF)<<6
	sbf[0][9] = uint32(af0&0x3FFFFF) << 8

	// Subframe 2
	sbf[1][0] = 0x8B0000 << 6
	sbf[1][1] = 0x2 << 8
	sbf[1][2] = (iode&0xFF)<<22 | uint32(crs&0xFFFF)<<6
	sbf[1][3] = uint32(deltan&0xFFFF)<<14 | uint32(m0>>24&0xFF)<<6
	sbf[1][4] = uint32(m0&0xFFFFFF) << 6
	sbf[1][5] = uint32(cuc&0xFFFF)<<14 | (ecc>>24&0xFF)<<6
	sbf[1][6] = (ecc & 0xFFFFFF) << 6
	sbf[1][7] = uint32(cus&0xFFFF)<<14 | (sqrta>>24&0xFF)<<6
	sbf[1][8] = (sqrta & 0xFFFFFF) << 6
	sbf[1][9] = (toe & 0xFFFF) << 14

	// Subframe 3
	sbf[2][0] = 0x8B0000 << 6
	sbf[2][1] = 0x3 << 8
	sbf[2][2] = uint32(cic&0xFFFF)<<14 | uint32(omg0>>24&0xFF)<<6
	sbf[2][3] = uint32(omg0&0xFFFFFF) << 6
	sbf[2][4] = uint32(cis&0xFFFF)<<14 | uint32(inc0>>24&0xFF)<<6
	sbf[2][5] = uint32(inc0&0xFFFFFF) << 6
	sbf[2][6] = uint32(crc&0xFFFF)<<14 | uint32(aop>>24&0xFF)<<6
	sbf[2][7] = uint32(aop&0xFFFFFF) << 6
	sbf[2][8] = uint32(omgdot&0xFFFFFF) << 6
	sbf[2][9] = (iode&0xFF)<<22 | uint32(idot&0x3FFF)<<8

	if ionoutc.Valid {
		alpha0 := int64(math.Round(ionoutc.Alpha0 / pow2m30))
		alpha1 := int64(math.Round(ionoutc.Alpha1 / pow2m27))
		alpha2 := int64(math.Round(ionoutc.Alpha2 / pow2m24))
		alpha3 := int64(math.Round(ionoutc.Alpha3 / pow2m24))
		beta0 := int64(math.Round(ionoutc.Beta0 / 2048.0))
		beta1 := int64(math.Round(ionoutc.Beta1 / 16384.0))
		beta2 := int64(math.Round(ionoutc.Beta2 / 65536.0))
		beta3 := int64(math.Round(ionoutc.Beta3 / 65536.0))
		a0 := int64(math.Round(ionoutc.A0 / pow2m30))
		a1 := int64(math.Round(ionoutc.A1 / pow2m50))
		dtls := int64(ionoutc.Dtls)
		tot := uint32(ionoutc.Tot / 4096)
		wnt := uint32(ionoutc.Wnt % 256)
		// Scheduled leap second 2016/12/31: WNlsf 1929, DN 7 (Sunday is 1).
		wnlsf := uint32(1929 % 256)
		dn := uint32(7)
		dtlsf := uint32(18)

		// Subframe 4, page 18
		sbf[3][0] = 0x8B0000 << 6
		sbf[3][1] = 0x4 << 8
		sbf[3][2] = dataID<<28 | sbf4Page18SV<<22 | uint32(alpha0&0xFF)<<14 | uint32(alpha1&0xFF)<<6
		sbf[3][3] = uint32(alpha2&0xFF)<<22 | uint32(alpha3&0xFF)<<14 | uint32(beta0&0xFF)<<6
		sbf[3][4] = uint32(beta1&0xFF)<<22 | uint32(beta2&0xFF)<<14 | uint32(beta3&0xFF)<<6
		sbf[3][5] = uint32(a1&0xFFFFFF) << 6
		sbf[3][6] = uint32(a0>>8&0xFFFFFF) << 6
		sbf[3][7] = uint32(a0&0xFF)<<22 | (tot&0xFF)<<14 | (wnt&0xFF)<<6
		sbf[3][8] = uint32(dtls&0xFF)<<22 | (wnlsf&0xFF)<<14 | (dn&0xFF)<<6
		sbf[3][9] = (dtlsf & 0xFF) << 22
	} else {
		// Subframe 4, page 25
		sbf[3][0] = 0x8B0000 << 6
		sbf[3][1] = 0x4 << 8
		sbf[3][2] = dataID<<28 | sbf4Page25SV<<22
	}

	// Subframe 5, page 25
	sbf[4][0] = 0x8B0000 << 6
	sbf[4][1] = 0x5 << 8
	sbf[4][2] = dataID<<28 | sbf5Page25SV<<22 | (toa&0xFF)<<14 | (wna&0xFF)<<6

	return sbf
}

// parity masks for D25..D30 over the 24 data bits held in bits 29:6.
var parityMask = [6]uint32{
	0x3B1F3480, 0x1D8F9A40, 0x2EC7CD00,
	0x1763E680, 0x2BB1F340, 0x0B7A89C0,
}

// Checksum computes the six parity bits for one 30-bit word.
//
// Bits 31:30 of source carry D29* and D30*, the two trailing bits of the
// previously transmitted word; bits 29:6 carry the 24 data bits. When nib
// is set (words 2 and 10 of a subframe, which end in non-information
// bearing bits), bits 23 and 24 are solved so that the two trailing parity
// bits come out zero.
func Checksum(source uint32, nib bool) uint32 {
	d := source & 0x3FFFFFC0
	d29 := source >> 31 & 0x1
	d30 := source >> 30 & 0x1

	if nib {
		if (d30+uint32(bits.OnesCount32(parityMask[4]&d)))%2 != 0 {
			d ^= 0x1 << 6
		}
		if (d29+uint32(bits.OnesCount32(parityMask[5]&d)))%2 != 0 {
			d ^= 0x1 << 7
		}
	}

	out := d
	if d30 != 0 {
		out ^= 0x3FFFFFC0
	}

	out |= (d29 + uint32(bits.OnesCount32(parityMask[0]&d))) % 2 << 5
	out |= (d30 + uint32(bits.OnesCount32(parityMask[1]&d))) % 2 << 4
	out |= (d29 + uint32(bits.OnesCount32(parityMask[2]&d))) % 2 << 3
	out |= (d30 + uint32(bits.OnesCount32(parityMask[3]&d))) % 2 << 2
	out |= (d30 + uint32(bits.OnesCount32(parityMask[4]&d))) % 2 << 1
	out |= (d29 + uint32(bits.OnesCount32(parityMask[5]&d))) % 2

	return out & 0x3FFFFFFF
}

// Generate fills the word ring with parity-complete words for the frame
// containing t and returns the frame-aligned data bit reference time g0.
//
// On the initial call the current subframe 5 is emitted into the head of
// the ring to seed the D29*/D30* chain; afterwards the tail subframe (the
// last one emitted from the previous batch) is moved to the head. The five
// fresh subframes follow with the TOW count advancing by one per subframe
// and the transmission week inserted into word 3 of subframe 1.
func Generate(t gpstime.Time, sbf *Subframes, words *Words, init bool) gpstime.Time {
	// Align with the full frame length of 30 seconds.
	g0 := gpstime.Time{
		Week: t.Week,
		Sec:  float64(uint64(t.Sec+0.5)/30) * 30.0,
	}

	wn := uint32(g0.Week % 1024)
	tow := uint32(g0.Sec) / 6

	var prevwrd uint32

	if init {
		// Seed the chain with subframe 5 so its trailing bits feed the
		// first fresh subframe's parity.
		for iwrd := 0; iwrd < WordsPerSbf; iwrd++ {
			sbfwrd := sbf[4][iwrd]

			if iwrd == 1 {
				sbfwrd |= (tow & 0x1FFFF) << 13
			}

			sbfwrd |= prevwrd << 30 & 0xC0000000
			nib := iwrd == 1 || iwrd == 9
			words[iwrd] = Checksum(sbfwrd, nib)

			prevwrd = words[iwrd]
		}
	} else {
		// Recycle the previous batch's tail subframe.
		for iwrd := 0; iwrd < WordsPerSbf; iwrd++ {
			words[iwrd] = words[WordsPerSbf*NSubframes+iwrd]

			prevwrd = words[iwrd]
		}
	}

	for isbf := 0; isbf < NSubframes; isbf++ {
		tow++

		for iwrd := 0; iwrd < WordsPerSbf; iwrd++ {
			sbfwrd := sbf[isbf][iwrd]

			// Transmission week number goes into subframe 1, word 3.
			if isbf == 0 && iwrd == 2 {
				sbfwrd |= (wn & 0x3FF) << 20
			}

			// TOW count goes into every HOW.
			if iwrd == 1 {
				sbfwrd |= (tow & 0x1FFFF) << 13
			}

			sbfwrd |= prevwrd << 30 & 0xC0000000
			nib := iwrd == 1 || iwrd == 9
			words[(isbf+1)*WordsPerSbf+iwrd] = Checksum(sbfwrd, nib)

			prevwrd = words[(isbf+1)*WordsPerSbf+iwrd]
		}
	}

	return g0
}
