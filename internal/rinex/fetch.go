package rinex

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	// DefaultArchiveURL is the BKG near-real-time broadcast archive.
	DefaultArchiveURL = "https://igs.bkg.bund.de/root_ftp/IGS"

	// Archive subfolders per RINEX version.
	subfolderV2 = "nrt"
	subfolderV3 = "nrt_v3"

	// DefaultTimeout for archive requests.
	DefaultTimeout = 60 * time.Second
)

// Fetcher downloads the current hourly navigation file from a public
// archive.
type Fetcher struct {
	client  *http.Client
	baseURL string
	station Station
	v3      bool
	now     func() time.Time
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithBaseURL points the fetcher at a different archive mirror.
func WithBaseURL(url string) FetcherOption {
	return func(f *Fetcher) {
		f.baseURL = url
	}
}

// WithStation selects the ground station whose file is pulled.
func WithStation(s Station) FetcherOption {
	return func(f *Fetcher) {
		f.station = s
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = client
	}
}

// withClock overrides the wall clock, for tests.
func withClock(now func() time.Time) FetcherOption {
	return func(f *Fetcher) {
		f.now = now
	}
}

// NewFetcher creates a Fetcher for the given RINEX version. The default
// station is the first v3 station, or the Brest v2 station.
func NewFetcher(v3 bool, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		baseURL: DefaultArchiveURL,
		v3:      v3,
		now:     time.Now,
	}
	if v3 {
		f.station = StationsV3[0]
	} else {
		f.station = StationsV2[25]
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = &http.Client{Timeout: DefaultTimeout}
	}

	return f
}

// URL composes the archive path of the navigation file covering the
// previous hour (the current hour is still being written).
func (f *Fetcher) URL() string {
	t := f.now().UTC().Add(-time.Hour)

	sub := subfolderV2
	if f.v3 {
		sub = subfolderV3
	}

	doy := t.YearDay()
	hourLetter := 'a' + rune(t.Hour())

	return fmt.Sprintf("%s/%s/%03d/%02d/%4s%03d%c.%02dn.gz",
		f.baseURL, sub, doy, t.Hour(), f.station.IDv2, doy, hourLetter, t.Year()%100)
}

// Fetch downloads the file into path.
func (f *Fetcher) Fetch(ctx context.Context, path string) error {
	url := f.URL()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("rinex: create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("rinex: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rinex: fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("rinex: create %s: %w", path, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("rinex: write %s: %w", path, err)
	}

	return nil
}
