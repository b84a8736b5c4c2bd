// Package timezone turns client-local timestamps plus coordinates into UTC
// instants. Zone lookup is pure geometry (coordinates -> IANA name); the
// tz database is compiled in so lookups never touch the host filesystem.
package timezone

import (
	"errors"
	"fmt"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/ringsaturn/tzf"
	"golang.org/x/sync/singleflight"
)

// ErrNoZone is returned when no IANA zone covers the coordinates,
// typically points over open ocean.
var ErrNoZone = errors.New("no timezone for coordinates")

// wireLayout is the offset-less wall-clock form clients may send.
const wireLayout = "2006-01-02T15:04:05"

// Finder resolves coordinates to an IANA timezone name. Satisfied by
// tzf.DefaultFinder; tests substitute a stub.
type Finder interface {
	GetTimezoneName(lng, lat float64) string
}

// Resolver converts local timestamps to timezone-naive UTC instants.
type Resolver struct {
	finder Finder

	// LoadLocation parses tzdata on every call; cache the parsed zones
	// and collapse concurrent loads of the same name.
	group singleflight.Group
	zones sync.Map // name -> *time.Location
}

// NewResolver builds a Resolver backed by the embedded tzf polygon index.
func NewResolver() (*Resolver, error) {
	finder, err := tzf.NewDefaultFinder()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize timezone finder: %w", err)
	}
	return &Resolver{finder: finder}, nil
}

// NewResolverWithFinder builds a Resolver over a caller-supplied Finder.
func NewResolverWithFinder(f Finder) *Resolver {
	return &Resolver{finder: f}
}

// ToUTC resolves the zone for (lat, long) and converts ts to UTC. A naive
// ts is re-read as wall-clock time in the resolved zone; an aware ts keeps
// its own offset and is only converted.
func (r *Resolver) ToUTC(ts time.Time, naive bool, lat, long float64) (time.Time, error) {
	name := r.finder.GetTimezoneName(long, lat)
	if name == "" {
		return time.Time{}, fmt.Errorf("%w: lat=%v long=%v", ErrNoZone, lat, long)
	}

	if naive {
		loc, err := r.loadZone(name)
		if err != nil {
			return time.Time{}, err
		}
		y, m, d := ts.Date()
		hh, mm, ss := ts.Clock()
		ts = time.Date(y, m, d, hh, mm, ss, ts.Nanosecond(), loc)
	}
	return ts.UTC(), nil
}

func (r *Resolver) loadZone(name string) (*time.Location, error) {
	if cached, ok := r.zones.Load(name); ok {
		return cached.(*time.Location), nil
	}
	v, err, _ := r.group.Do(name, func() (interface{}, error) {
		loc, err := time.LoadLocation(name)
		if err != nil {
			return nil, fmt.Errorf("failed to load zone %q: %w", name, err)
		}
		r.zones.Store(name, loc)
		return loc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*time.Location), nil
}

// ParseTimestamp parses a wire timestamp. RFC 3339 values are aware;
// offset-less values parse as naive wall-clock time to be localized
// against the ping's coordinates.
func ParseTimestamp(s string) (ts time.Time, naive bool, err error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	if t, err := time.Parse(wireLayout, s); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, fmt.Errorf("invalid timestamp %q", s)
}
