package aggregation

import (
	"testing"
	"time"

	"github.com/locus-lab/project-locus/internal/domain"
	"github.com/stretchr/testify/require"
)

func sample(ts time.Time, lat, long, accuracy, speed float64) domain.Sample {
	return domain.Sample{Timestamp: ts, Lat: lat, Long: long, Accuracy: accuracy, Speed: speed, UserID: "user-1"}
}

func TestResample_SingleBucketMean(t *testing.T) {
	t0 := time.Date(2017, 1, 1, 18, 5, 0, 0, time.UTC)

	rows := Resample([]domain.Sample{
		sample(t0.Add(10*time.Second), 40.0, -73.0, 4, 1),
		sample(t0.Add(20*time.Second), 41.0, -74.0, 6, 3),
	})

	require.Len(t, rows, 1)
	require.Equal(t, t0, rows[0].Bucket)
	require.InDelta(t, 40.5, rows[0].Lat, 1e-9)
	require.InDelta(t, -73.5, rows[0].Long, 1e-9)
	require.InDelta(t, 5.0, rows[0].Accuracy, 1e-9)
	require.InDelta(t, 2.0, rows[0].Speed, 1e-9)
}

func TestResample_SplitsByMinuteBucket(t *testing.T) {
	t0 := time.Date(2017, 1, 1, 18, 5, 0, 0, time.UTC)

	rows := Resample([]domain.Sample{
		sample(t0.Add(50*time.Second), 40.0, -73.0, 4, 1),
		sample(t0.Add(65*time.Second), 42.0, -75.0, 8, 5),
	})

	require.Len(t, rows, 2)
	require.Equal(t, t0, rows[0].Bucket)
	require.Equal(t, t0.Add(time.Minute), rows[1].Bucket)
	require.InDelta(t, 40.0, rows[0].Lat, 1e-9)
	require.InDelta(t, 42.0, rows[1].Lat, 1e-9)
}

func TestResample_Empty(t *testing.T) {
	require.Nil(t, Resample(nil))
	require.Nil(t, Resample([]domain.Sample{}))
}
