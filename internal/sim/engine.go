package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/gnsslab/plutosim/internal/cacode"
	"github.com/gnsslab/plutosim/internal/geodesy"
	"github.com/gnsslab/plutosim/internal/gpstime"
	"github.com/gnsslab/plutosim/internal/logging"
	"github.com/gnsslab/plutosim/internal/motion"
	"github.com/gnsslab/plutosim/internal/navmsg"
	"github.com/gnsslab/plutosim/internal/orbit"
	"github.com/gnsslab/plutosim/internal/rinex"
)

// NumSamples is the number of complex samples per produced frame. One
// frame spans NumSamples / SampleRate seconds of signal; the simulated
// reception time nevertheless advances by exactly StepSeconds per frame.
const NumSamples = 260000

// StepSeconds is the simulated time step per frame and the trajectory
// cadence.
const StepSeconds = 0.1

// Fatal configuration and coverage errors.
var (
	ErrSampleRate   = errors.New("sim: invalid sample rate")
	ErrNoEphemeris  = errors.New("sim: no valid ephemeris")
	ErrStartTime    = errors.New("sim: start time outside ephemeris window")
	ErrNoCurrentSet = errors.New("sim: no current set of ephemerides")
)

// Sink consumes produced I/Q frames. Push blocks until the backend has
// accepted the buffer; the engine treats any error as fatal.
type Sink interface {
	Push(ctx context.Context, iq []int16) error
}

// Config assembles an Engine.
type Config struct {
	Nav        *rinex.Nav
	SampleRate float64

	// Start anchors the scenario; an invalid Time means the earliest
	// TOC in the file. With Overwrite set the ephemeris TOC/TOE are
	// shifted onto the anchor instead of requiring it inside the file's
	// window.
	Start     gpstime.Time
	Overwrite bool

	Motion     motion.Source
	IonoEnable bool
	PhaseMode  PhaseMode
	DAC        *DAC

	Verbose bool
	Log     *logging.Logger
}

// ChannelStatus is a snapshot row of one active channel, for display.
type ChannelStatus struct {
	PRN     int
	AzDeg   float64
	ElDeg   float64
	Range   float64
	Iono    float64
	Doppler float64
}

// Status is a snapshot of the running engine.
type Status struct {
	Time     gpstime.Time
	Elapsed  float64
	Channels []ChannelStatus
}

// Engine owns all simulation state: the ephemeris table, the channel
// pool, the scheduler bookkeeping, and the frame buffer it alternates
// with the sink consumer. Everything mutable is confined to the
// goroutine running Run; the UI sees copies through Snapshot.
type Engine struct {
	cfg Config
	log *logging.Logger

	nav     *rinex.Nav
	ionoutc rinex.IonoUTC
	ieph    int

	g0   gpstime.Time
	grx  gpstime.Time
	delt float64

	chans  [MaxChannels]Channel
	alloc  [rinex.MaxSat]int
	gain   [MaxChannels]float64
	antPat [37]float64

	dac *DAC
	buf []int16

	src  motion.Source
	iumd int

	statusMu sync.Mutex
	status   Status
}

// New validates the configuration, applies the start-time policy to the
// ephemeris table, and selects the initial ephemeris set.
func New(cfg Config) (*Engine, error) {
	if cfg.SampleRate < 1.0e6 {
		return nil, fmt.Errorf("%w: %.0f Hz (minimum 1000000)", ErrSampleRate, cfg.SampleRate)
	}
	if cfg.Log == nil {
		cfg.Log = logging.Discard()
	}
	if cfg.DAC == nil {
		cfg.DAC = DAC16()
	}
	if cfg.Motion == nil {
		return nil, errors.New("sim: no motion source")
	}

	e := &Engine{
		cfg:  cfg,
		log:  cfg.Log,
		nav:  cfg.Nav,
		delt: 1.0 / cfg.SampleRate,
		dac:  cfg.DAC,
		src:  cfg.Motion,
		buf:  make([]int16, 2*NumSamples),
	}

	e.ionoutc = cfg.Nav.IonoUTC
	e.ionoutc.Enable = cfg.IonoEnable

	for i := range e.antPat {
		e.antPat[i] = math.Pow(10.0, -antPatDB[i]/20.0)
	}

	if err := e.selectStart(cfg.Start, cfg.Overwrite); err != nil {
		return nil, err
	}

	return e, nil
}

// selectStart resolves the scenario start time against the ephemeris
// window and picks the initial set.
func (e *Engine) selectStart(start gpstime.Time, overwrite bool) error {
	first, _ := e.nav.FirstValid(0)
	if first == nil {
		return ErrNoEphemeris
	}
	gmin := first.TOC

	last, _ := e.nav.FirstValid(len(e.nav.Sets) - 1)
	gmax := last.TOC

	switch {
	case start.Valid() && overwrite:
		// Align the anchor to a two-hour boundary and shift every record
		// in the table onto it, so an arbitrary start can reuse an old
		// broadcast file.
		aligned := gpstime.Time{Week: start.Week, Sec: float64(int(start.Sec)/7200) * 7200.0}
		dsec := aligned.Sub(gmin)

		e.ionoutc.Wnt = aligned.Week
		e.ionoutc.Tot = int(aligned.Sec)

		for i := range e.nav.Sets {
			for sv := range e.nav.Sets[i] {
				eph := &e.nav.Sets[i][sv]
				if !eph.Valid {
					continue
				}
				eph.TOC = eph.TOC.Add(dsec)
				eph.T = eph.TOC.ToDate()
				eph.TOE = eph.TOE.Add(dsec)
			}
		}
		e.g0 = start

	case start.Valid():
		if start.Sub(gmin) < 0.0 || gmax.Sub(start) < 0.0 {
			return fmt.Errorf("%w: %s not in [%s, %s]", ErrStartTime,
				start.ToDate(), gmin.ToDate(), gmax.ToDate())
		}
		e.g0 = start

	default:
		e.g0 = gmin
	}

	// Pick the set whose earliest record covers the start.
	e.ieph = -1
	for i := range e.nav.Sets {
		eph, _ := e.nav.FirstValid(i)
		if eph == nil {
			continue
		}
		dt := e.g0.Sub(eph.TOC)
		if dt >= -gpstime.SecondsInHour && dt < gpstime.SecondsInHour {
			e.ieph = i
			break
		}
	}
	if e.ieph == -1 {
		return ErrNoCurrentSet
	}

	return nil
}

// StartTime returns the resolved scenario start.
func (e *Engine) StartTime() gpstime.Time { return e.g0 }

// set returns the active ephemeris set.
func (e *Engine) set() *rinex.Set { return &e.nav.Sets[e.ieph] }

// Snapshot returns the latest status copy for display.
func (e *Engine) Snapshot() Status {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()

	s := e.status
	s.Channels = append([]ChannelStatus(nil), e.status.Channels...)
	return s
}

func (e *Engine) publishStatus(elapsed float64) {
	rows := make([]ChannelStatus, 0, MaxChannels)
	for i := range e.chans {
		ch := &e.chans[i]
		if ch.PRN == 0 {
			continue
		}
		rows = append(rows, ChannelStatus{
			PRN:     ch.PRN,
			AzDeg:   ch.AzEl.Az * geodesy.R2D,
			ElDeg:   ch.AzEl.El * geodesy.R2D,
			Range:   ch.Rho0.D,
			Iono:    ch.Rho0.IonoDelay,
			Doppler: ch.FCarr,
		})
	}

	e.statusMu.Lock()
	e.status = Status{Time: e.grx, Elapsed: elapsed, Channels: rows}
	e.statusMu.Unlock()
}

// Run synthesizes frames and alternates the buffer with the sink until
// the context is cancelled or the sink fails. It blocks for the whole
// run; the sink consumer runs in its own goroutine.
func (e *Engine) Run(ctx context.Context, sink Sink) error {
	// Channel pool and allocation table start clean.
	for i := range e.chans {
		e.chans[i].PRN = 0
	}
	for sv := range e.alloc {
		e.alloc[sv] = -1
	}

	e.grx = e.g0.Add(0.0)
	e.iumd = 0

	nsat := allocateChannels(&e.chans, &e.alloc, e.set(), &e.ionoutc, e.grx,
		e.src.Position(0), e.cfg.PhaseMode)
	e.log.Info("%d satellites visible", nsat)
	e.logChannelTable()
	e.publishStatus(0)

	// Consumer: copy the produced frame out, release the buffer, then
	// push to the device. Exactly one frame is in flight at a time.
	frames := make(chan []int16)
	release := make(chan struct{})
	errc := make(chan error, 1)

	go func() {
		txbuf := make([]int16, 2*NumSamples)
		for {
			select {
			case <-ctx.Done():
				return
			case frame := <-frames:
				copy(txbuf, frame)
				select {
				case release <- struct{}{}:
				case <-ctx.Done():
					return
				}
				if err := sink.Push(ctx, txbuf); err != nil {
					errc <- fmt.Errorf("sim: sink: %w", err)
					return
				}
			}
		}
	}()

	e.grx = e.grx.Add(StepSeconds)
	elapsed := 0.0

	for {
		pos := e.src.Position(e.iumd)

		e.updateChannels(pos)
		e.fillBuffer(e.buf)

		select {
		case frames <- e.buf:
		case err := <-errc:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
		select {
		case <-release:
		case err := <-errc:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}

		e.maintain()

		e.grx = e.grx.Add(StepSeconds)
		elapsed += StepSeconds
		e.iumd++
		if e.iumd >= e.src.Len() {
			e.iumd = 0
		}

		if e.cfg.Verbose {
			e.publishStatus(elapsed)
		}
	}
}

// updateChannels recomputes each active channel's pseudorange, NCO rates,
// message cursors, and gain for the coming frame.
func (e *Engine) updateChannels(pos geodesy.Vec3) {
	set := e.set()

	for i := range e.chans {
		ch := &e.chans[i]
		if ch.PRN == 0 {
			continue
		}

		var rho orbit.Range
		orbit.ComputeRange(&rho, &set[ch.PRN-1], &e.ionoutc, e.grx, pos)
		ch.AzEl = rho.AzEl

		ch.updateCodePhase(rho, StepSeconds)

		if e.cfg.PhaseMode == PhaseInt {
			ch.CarrPhaseStep = int32(math.Round(phaseScale * ch.FCarr * e.delt))
		}

		pathLoss := 20200000.0 / rho.D
		ibs := int((90.0 - rho.AzEl.El*geodesy.R2D) / 5.0)
		antGain := e.antPat[ibs]

		e.gain[i] = pathLoss * antGain * e.dac.Gain
	}
}

// fillBuffer runs the modulator inner loop over len(buf)/2 samples:
// spread, mix, sum, and quantize every active channel.
func (e *Engine) fillBuffer(buf []int16) {
	nsamp := len(buf) / 2
	delt := e.delt
	dac := e.dac
	floatPhase := e.cfg.PhaseMode == PhaseFloat

	for isamp := 0; isamp < nsamp; isamp++ {
		var iAcc, qAcc int64

		for i := range e.chans {
			ch := &e.chans[i]
			if ch.PRN == 0 {
				continue
			}

			var iTable int
			if floatPhase {
				iTable = int(ch.CarrPhase * 512.0)
			} else {
				iTable = int(ch.CarrPhaseI>>16) & 0x1ff
			}

			bc := float64(ch.DataBit * ch.CodeCA)
			iAcc += int64(bc * float64(dac.Cos[iTable]) * e.gain[i])
			qAcc += int64(bc * float64(dac.Sin[iTable]) * e.gain[i])

			// Code NCO, with bit and word cursors cascading off the
			// 1 ms code epoch.
			ch.CodePhase += ch.FCode * delt

			if ch.CodePhase >= cacode.SeqLen {
				ch.CodePhase -= cacode.SeqLen

				ch.ICode++
				if ch.ICode >= navmsg.CodesPerBit {
					ch.ICode = 0
					ch.IBit++

					if ch.IBit >= navmsg.BitsPerWord {
						ch.IBit = 0
						ch.IWord++
					}

					ch.DataBit = int(ch.Words[ch.IWord]>>(29-ch.IBit)&0x1)*2 - 1
				}
			}

			ch.CodeCA = ch.CA[int(ch.CodePhase)]*2 - 1

			// Carrier NCO.
			if floatPhase {
				ch.CarrPhase += ch.FCarr * delt
				if ch.CarrPhase >= 1.0 {
					ch.CarrPhase -= 1.0
				} else if ch.CarrPhase < 0.0 {
					ch.CarrPhase += 1.0
				}
			} else {
				ch.CarrPhaseI += uint32(ch.CarrPhaseStep)
			}
		}

		buf[2*isamp] = int16((iAcc + dac.Offset) >> dac.Shift)
		buf[2*isamp+1] = int16((qAcc + dac.Offset) >> dac.Shift)
	}
}

// maintain performs the 30 s housekeeping: refresh each channel's
// message batch, advance to the next ephemeris set when it comes into
// window, and rerun the scheduler.
func (e *Engine) maintain() {
	igrx := int(e.grx.Sec*10.0 + 0.5)
	if igrx%300 != 0 {
		return
	}

	for i := range e.chans {
		ch := &e.chans[i]
		if ch.PRN != 0 {
			ch.G0 = navmsg.Generate(e.grx, &ch.Sbf, &ch.Words, false)
		}
	}

	if e.ieph+1 < len(e.nav.Sets) {
		if eph, _ := e.nav.FirstValid(e.ieph + 1); eph != nil {
			if eph.TOC.Sub(e.grx) < gpstime.SecondsInHour {
				e.ieph++
				e.log.Debug("advanced to ephemeris set %d", e.ieph)

				set := e.set()
				for i := range e.chans {
					ch := &e.chans[i]
					if ch.PRN != 0 {
						ch.Sbf = navmsg.EphToSubframes(&set[ch.PRN-1], &e.ionoutc)
					}
				}
			}
		}
	}

	nsat := allocateChannels(&e.chans, &e.alloc, e.set(), &e.ionoutc, e.grx,
		e.src.Position(e.iumd), e.cfg.PhaseMode)
	e.log.Debug("%d satellites visible", nsat)
}

// logChannelTable prints the allocation table once at startup, the way
// operators sanity-check a scenario.
func (e *Engine) logChannelTable() {
	e.log.Info("PRN   Az    El     Range     Iono")
	for i := range e.chans {
		ch := &e.chans[i]
		if ch.PRN == 0 {
			continue
		}
		e.log.Info("%02d %6.1f %5.1f %11.1f %5.1f", ch.PRN,
			ch.AzEl.Az*geodesy.R2D, ch.AzEl.El*geodesy.R2D,
			ch.Rho0.D, ch.Rho0.IonoDelay)
	}
}
