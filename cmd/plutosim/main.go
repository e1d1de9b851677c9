// Command plutosim synthesizes a GPS L1 C/A baseband I/Q stream from
// broadcast ephemerides, on the fly, and hands it to an SDR transmit
// sink.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gnsslab/plutosim/internal/geodesy"
	"github.com/gnsslab/plutosim/internal/gpstime"
	"github.com/gnsslab/plutosim/internal/logging"
	"github.com/gnsslab/plutosim/internal/motion"
	"github.com/gnsslab/plutosim/internal/rinex"
	"github.com/gnsslab/plutosim/internal/sdr"
	"github.com/gnsslab/plutosim/internal/sim"
	"github.com/gnsslab/plutosim/internal/ui"
	"github.com/gnsslab/plutosim/internal/version"
)

// Fetched navigation files land in the working directory.
const (
	rinex2FileName = "rinex2.gz"
	rinex3FileName = "rinex3.gz"

	defaultSinkPath = "gpssim.bin"
)

// Default static location: Tokyo.
var defaultLLH = geodesy.LLH{
	Lat: 35.681298 / geodesy.R2D,
	Lon: 139.766247 / geodesy.R2D,
	Hgt: 10.0,
}

func main() {
	var (
		navFile  = flag.String("e", "", "RINEX navigation file for GPS ephemerides")
		useFetch = flag.Bool("f", false, "fetch the current navigation file from the archive")
		useV3    = flag.Bool("3", false, "navigation file is RINEX version 3")
		umFile   = flag.String("u", "", "user motion CSV (dynamic mode, 10 Hz)")
		ggaFile  = flag.String("g", "", "NMEA GGA stream (file or serial device)")
		ecefArg  = flag.String("c", "", "static ECEF position x,y,z in meters")
		llhArg   = flag.String("l", "", "static position lat,lon,hgt (deg,deg,m)")
		timeArg  = flag.String("t", "", "scenario start time YYYY/MM/DD,hh:mm:ss")
		timeOvwr = flag.String("T", "", "overwrite TOC/TOE to the start time ('now' for current)")
		sampRate = flag.Float64("s", sdr.DefaultSampleRate, "sample rate in Hz")
		ionoOff  = flag.Bool("i", false, "disable ionospheric delay")
		verbose  = flag.Bool("v", false, "show live channel table")
		gainDB   = flag.Float64("A", sdr.DefaultGainDB, "TX attenuation in dB")
		bwMHz    = flag.Float64("B", 3.0, "RF bandwidth in MHz")
		uriArg   = flag.String("U", "", "sink URI (file path, '-', or udp://host:port)")
		hostArg  = flag.String("N", sdr.DefaultHostname, "SDR backend network name")
		showVer  = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVer {
		fmt.Println("plutosim", version.Version)
		return
	}

	logLevel := logging.LevelInfo
	if *verbose {
		logLevel = logging.LevelDebug
	}
	logger := logging.New(logLevel)

	if err := run(&options{
		navFile:  *navFile,
		useFetch: *useFetch,
		useV3:    *useV3,
		umFile:   *umFile,
		ggaFile:  *ggaFile,
		ecefArg:  *ecefArg,
		llhArg:   *llhArg,
		timeArg:  *timeArg,
		timeOvwr: *timeOvwr,
		sampRate: *sampRate,
		ionoOff:  *ionoOff,
		verbose:  *verbose,
		gainDB:   *gainDB,
		bwMHz:    *bwMHz,
		uri:      *uriArg,
		host:     *hostArg,
	}, logger); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

type options struct {
	navFile  string
	useFetch bool
	useV3    bool
	umFile   string
	ggaFile  string
	ecefArg  string
	llhArg   string
	timeArg  string
	timeOvwr string
	sampRate float64
	ionoOff  bool
	verbose  bool
	gainDB   float64
	bwMHz    float64
	uri      string
	host     string
}

func run(opts *options, logger *logging.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sigCh
		cancel()
	}()

	// Transmit configuration.
	cfg := sdr.DefaultConfig()
	cfg.SampleRateHz = int64(opts.sampRate)
	cfg.BandwidthHz = int64(opts.bwMHz * 1e6)
	cfg.GainDB = opts.gainDB
	cfg.URI = opts.uri
	cfg.Hostname = opts.host
	cfg.Clamp()

	// Scenario start time.
	start := gpstime.Invalid()
	overwrite := false

	if opts.timeOvwr != "" {
		overwrite = true
		if strings.HasPrefix(opts.timeOvwr, "now") {
			start = gpstime.Now()
		} else {
			var err error
			if start, err = parseScenarioTime(opts.timeOvwr); err != nil {
				return err
			}
		}
	} else if opts.timeArg != "" {
		var err error
		if start, err = parseScenarioTime(opts.timeArg); err != nil {
			return err
		}
	}

	// Receiver position source.
	src, err := positionSource(opts, logger)
	if err != nil {
		return err
	}

	// Navigation data.
	navPath := opts.navFile
	if opts.useFetch {
		navPath = rinex2FileName
		if opts.useV3 {
			navPath = rinex3FileName
		}

		fetcher := rinex.NewFetcher(opts.useV3)
		logger.Info("fetching %s", fetcher.URL())
		if err := fetcher.Fetch(ctx, navPath); err != nil {
			return err
		}
	}
	if navPath == "" {
		return errors.New("GPS ephemeris file is not specified (use -e or -f)")
	}

	nav, err := rinex.ReadNavFile(navPath, opts.useV3)
	if err != nil {
		return err
	}
	if len(nav.Sets) == 0 {
		return errors.New("no ephemeris available")
	}

	if nav.Date != "" {
		logger.Info("RINEX date = %s", nav.Date)
	}
	if !opts.ionoOff && nav.IonoUTC.Valid {
		logIonoUTC(logger, &nav.IonoUTC)
	}

	engine, err := sim.New(sim.Config{
		Nav:        nav,
		SampleRate: opts.sampRate,
		Start:      start,
		Overwrite:  overwrite,
		Motion:     src,
		IonoEnable: !opts.ionoOff,
		PhaseMode:  sim.PhaseFloat,
		DAC:        sim.DAC16(),
		Verbose:    opts.verbose,
		Log:        logger,
	})
	if err != nil {
		return err
	}

	logger.Info("gain: %.1f dB, bandwidth: %.1f MHz", cfg.GainDB, float64(cfg.BandwidthHz)/1e6)
	logger.Info("start time = %s (%d:%.0f)", engine.StartTime().ToDate(),
		engine.StartTime().Week, engine.StartTime().Sec)

	sink, err := openSink(opts, logger)
	if err != nil {
		return err
	}
	defer sink.Close()

	if opts.verbose {
		return runWithUI(ctx, cancel, engine, sink, logger)
	}

	err = engine.Run(ctx, sink)
	if errors.Is(err, context.Canceled) {
		logger.Info("shutting down")
		return nil
	}
	return err
}

// closableSink is what the command wires between engine and backend.
type closableSink interface {
	sim.Sink
	Close() error
}

// runWithUI runs the engine in the background while the channel table
// owns the terminal. Quitting the table stops the run.
func runWithUI(ctx context.Context, cancel context.CancelFunc, engine *sim.Engine,
	sink closableSink, logger *logging.Logger) error {

	logger.SetOutput(io.Discard)
	defer logger.SetOutput(os.Stderr)

	errc := make(chan error, 1)
	go func() {
		errc <- engine.Run(ctx, sink)
		cancel()
	}()

	p := tea.NewProgram(ui.New(engine), tea.WithAltScreen())
	go func() {
		// Engine failure tears the TUI down too.
		<-ctx.Done()
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-errc
		return fmt.Errorf("ui: %w", err)
	}
	cancel()

	if err := <-errc; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// positionSource builds the receiver trajectory from the flags: user
// motion CSV, NMEA GGA, static ECEF, or static geodetic, in that order
// of precedence.
func positionSource(opts *options, logger *logging.Logger) (motion.Source, error) {
	switch {
	case opts.umFile != "":
		tr, err := motion.ReadUserMotionFile(opts.umFile)
		if err != nil {
			return nil, err
		}
		logger.Info("using user motion mode, %d points", tr.Len())
		return tr, nil

	case opts.ggaFile != "":
		tr, err := motion.OpenGGA(opts.ggaFile)
		if err != nil {
			return nil, err
		}
		logger.Info("using NMEA GGA mode, %d fixes", tr.Len())
		return tr, nil

	case opts.ecefArg != "":
		var xyz geodesy.Vec3
		if _, err := fmt.Sscanf(opts.ecefArg, "%f,%f,%f", &xyz[0], &xyz[1], &xyz[2]); err != nil {
			return nil, fmt.Errorf("invalid ECEF position %q: %w", opts.ecefArg, err)
		}
		logger.Info("using static location mode")
		return motion.Static(xyz), nil

	case opts.llhArg != "":
		var latDeg, lonDeg, hgt float64
		if _, err := fmt.Sscanf(opts.llhArg, "%f,%f,%f", &latDeg, &lonDeg, &hgt); err != nil {
			return nil, fmt.Errorf("invalid position %q: %w", opts.llhArg, err)
		}
		llh := geodesy.LLH{Lat: latDeg / geodesy.R2D, Lon: lonDeg / geodesy.R2D, Hgt: hgt}
		logger.Info("using static location mode")
		return motion.Static(geodesy.LLHToXYZ(llh)), nil

	default:
		logger.Info("using static location mode (default)")
		return motion.Static(geodesy.LLHToXYZ(defaultLLH)), nil
	}
}

// openSink maps the -U argument onto a sample sink. Without one, frames
// go to a raw I/Q capture file.
func openSink(opts *options, logger *logging.Logger) (closableSink, error) {
	switch {
	case strings.HasPrefix(opts.uri, "udp://"):
		addr := strings.TrimPrefix(opts.uri, "udp://")
		logger.Info("streaming I/Q to udp://%s", addr)
		return sdr.NewUDPSink(addr)

	case opts.uri != "":
		logger.Info("writing I/Q to %s", opts.uri)
		return sdr.NewFileSink(opts.uri)

	default:
		logger.Info("writing I/Q to %s", defaultSinkPath)
		return sdr.NewFileSink(defaultSinkPath)
	}
}

// parseScenarioTime decodes YYYY/MM/DD,hh:mm:ss, validating calendar
// ranges; seconds are floored to whole seconds.
func parseScenarioTime(s string) (gpstime.Time, error) {
	var d gpstime.Date
	if _, err := fmt.Sscanf(s, "%d/%d/%d,%d:%d:%f",
		&d.Y, &d.M, &d.D, &d.HH, &d.MM, &d.Sec); err != nil {
		return gpstime.Invalid(), fmt.Errorf("invalid date and time %q: %w", s, err)
	}

	if d.Y <= 1980 || d.M < 1 || d.M > 12 || d.D < 1 || d.D > 31 ||
		d.HH < 0 || d.HH > 23 || d.MM < 0 || d.MM > 59 || d.Sec < 0.0 || d.Sec >= 60.0 {
		return gpstime.Invalid(), fmt.Errorf("invalid date and time %q", s)
	}
	d.Sec = math.Floor(d.Sec)

	return gpstime.FromDate(d), nil
}

func logIonoUTC(logger *logging.Logger, iu *rinex.IonoUTC) {
	logger.Debug("  %12.3e %12.3e %12.3e %12.3e", iu.Alpha0, iu.Alpha1, iu.Alpha2, iu.Alpha3)
	logger.Debug("  %12.3e %12.3e %12.3e %12.3e", iu.Beta0, iu.Beta1, iu.Beta2, iu.Beta3)
	logger.Debug("   %19.11e %19.11e  %9d %9d", iu.A0, iu.A1, iu.Tot, iu.Wnt)
	logger.Debug("%6d", iu.Dtls)
}
