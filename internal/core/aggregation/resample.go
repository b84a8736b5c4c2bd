package aggregation

import (
	"sort"
	"time"

	"github.com/locus-lab/project-locus/internal/domain"
)

// Row is one resampled output: the unweighted arithmetic mean of every
// sample falling into one minute bucket. Means are plain float64; no
// rounding beyond native float precision.
type Row struct {
	Bucket   time.Time
	Lat      float64
	Long     float64
	Accuracy float64
	Speed    float64
}

// Resample groups samples by minute bucket and averages each group,
// returning rows ordered by bucket ascending. A correctly closed window
// yields exactly one row; samples straddling a minute boundary yield one
// row per distinct bucket.
func Resample(samples []domain.Sample) []Row {
	if len(samples) == 0 {
		return nil
	}

	type acc struct {
		lat, long, accuracy, speed float64
		n                          int
	}
	buckets := make(map[time.Time]*acc)
	for _, s := range samples {
		b := BucketFor(s.Timestamp)
		a, ok := buckets[b]
		if !ok {
			a = &acc{}
			buckets[b] = a
		}
		a.lat += s.Lat
		a.long += s.Long
		a.accuracy += s.Accuracy
		a.speed += s.Speed
		a.n++
	}

	rows := make([]Row, 0, len(buckets))
	for b, a := range buckets {
		n := float64(a.n)
		rows = append(rows, Row{
			Bucket:   b,
			Lat:      a.lat / n,
			Long:     a.long / n,
			Accuracy: a.accuracy / n,
			Speed:    a.speed / n,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Bucket.Before(rows[j].Bucket) })
	return rows
}
