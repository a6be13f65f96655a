package generator

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/parking/internal/domain"
	"github.com/smartcity/parking/internal/history"
)

var testZones = []domain.Zone{
	{ID: 1, Code: "BF_001", Name: "Downtown Pike St", Capacity: 20},
	{ID: 6, Code: "BF_045", Name: "Stadium District - Occidental", Capacity: 35},
	{ID: 10, Code: "BF_202", Name: "Fremont - Fremont Ave", Capacity: 28},
}

func utc(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestRushHourScenario(t *testing.T) {
	p := Personality{BaseRate: 0.75, RushMultiplier: 1.3}
	zone := domain.Zone{ID: 1, Code: "BF_001", Capacity: 20}
	tuesday8am := utc(2023, time.January, 3, 8)
	require.Equal(t, time.Tuesday, tuesday8am.Weekday())

	rate := Rate(p, tuesday8am, 0)
	assert.InDelta(t, 0.975, rate, 1e-9)
	assert.LessOrEqual(t, rate, MaxRate)

	o := Observe(zone, tuesday8am, rate)
	assert.Equal(t, 19, o.OccupiedSpaces)
	assert.Equal(t, 20, o.TotalSpaces)
	assert.Equal(t, 0.975, o.OccupancyRate)
}

func TestRateClipping(t *testing.T) {
	busy := Personality{BaseRate: 0.9, RushMultiplier: 1.3}
	assert.Equal(t, MaxRate, Rate(busy, utc(2023, time.January, 3, 8), 0))

	quiet := Personality{BaseRate: 0.1, NightOffset: -0.4}
	assert.Equal(t, MinRate, Rate(quiet, utc(2023, time.January, 3, 2), 0))

	o := Observe(domain.Zone{Code: "BF_001", Capacity: 20}, utc(2023, time.January, 3, 8), MaxRate)
	assert.Equal(t, 19, o.OccupiedSpaces)
	assert.Equal(t, 0.98, o.OccupancyRate)
}

func TestRateTimeOfDayAdjustments(t *testing.T) {
	p := Personality{BaseRate: 0.5, RushMultiplier: 1.2, LunchBoost: 0.1, NightOffset: -0.2, WeekendOffset: 0.15}
	tuesday := func(h int) time.Time { return utc(2023, time.January, 3, h) }

	cases := []struct {
		name string
		t    time.Time
		want float64
	}{
		{"morning rush", tuesday(7), 0.6},
		{"morning rush end", tuesday(9), 0.6},
		{"mid morning", tuesday(10), 0.5},
		{"lunch", tuesday(11), 0.6},
		{"lunch end", tuesday(14), 0.6},
		{"afternoon", tuesday(16), 0.5},
		{"evening rush", tuesday(17), 0.6},
		{"night start", tuesday(20), 0.3},
		{"midnight", tuesday(0), 0.3},
		{"night end", tuesday(6), 0.3},
		{"saturday afternoon", utc(2023, time.January, 7, 15), 0.65},
		{"sunday lunch", utc(2023, time.January, 8, 12), 0.75},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, Rate(p, tc.t, 0), 1e-9)
		})
	}
}

func TestGenerateOrderingAndBounds(t *testing.T) {
	g, err := New(testZones, DefaultPersonalities())
	require.NoError(t, err)

	start := utc(2023, time.January, 1, 0)
	end := utc(2023, time.January, 14, 23)
	obs, err := g.Generate(Options{Start: start, End: end, Seed: 7})
	require.NoError(t, err)
	require.Len(t, obs, 14*24*len(testZones))

	for i, o := range obs {
		hour := i / len(testZones)
		assert.Equal(t, start.Add(time.Duration(hour)*time.Hour), o.Timestamp)
		assert.Equal(t, testZones[i%len(testZones)].Code, o.ZoneCode)

		assert.GreaterOrEqual(t, o.OccupancyRate, MinRate)
		assert.LessOrEqual(t, o.OccupancyRate, MaxRate)
		// the stored rate is rounded to 3 places, so compare on the rate scale
		total := float64(o.TotalSpaces)
		assert.LessOrEqual(t, math.Abs(float64(o.OccupiedSpaces)/total-o.OccupancyRate), 1/total+domain.RateTolerance,
			"occupied spaces derived from rate at %d", i)
		require.NoError(t, o.Validate())
	}
}

func TestGenerateReproducible(t *testing.T) {
	g, err := New(testZones, DefaultPersonalities())
	require.NoError(t, err)
	opts := Options{Start: utc(2023, time.March, 1, 0), End: utc(2023, time.March, 10, 0), Seed: 42}

	render := func(o Options) []byte {
		obs, err := g.Generate(o)
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, WriteJSON(&buf, obs))
		return buf.Bytes()
	}

	first := render(opts)
	assert.Equal(t, first, render(opts))

	parallel := opts
	parallel.Workers = 4
	assert.Equal(t, first, render(parallel), "worker count must not change output")

	other := opts
	other.Seed = 43
	assert.NotEqual(t, first, render(other))
}

func TestGenerateRoundTripsThroughHistoryStore(t *testing.T) {
	g, err := New(testZones, DefaultPersonalities())
	require.NoError(t, err)
	obs, err := g.Generate(Options{Start: utc(2024, time.June, 1, 0), End: utc(2024, time.June, 3, 23), Seed: 1})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, obs))

	store, err := history.Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, len(obs), store.Len())
	for _, z := range testZones {
		start, end, err := store.RangeFor(z.Code)
		require.NoError(t, err)
		assert.Equal(t, utc(2024, time.June, 1, 0), start)
		assert.Equal(t, utc(2024, time.June, 3, 23), end)
	}
}

func TestGenerateRejectsInvertedRange(t *testing.T) {
	g, err := New(testZones, DefaultPersonalities())
	require.NoError(t, err)
	_, err = g.Generate(Options{Start: utc(2024, time.June, 2, 0), End: utc(2024, time.June, 1, 0)})
	assert.Error(t, err)
}

func TestNewValidatesConfiguration(t *testing.T) {
	_, err := New(nil, DefaultPersonalities())
	assert.Error(t, err)

	_, err = New([]domain.Zone{{ID: 1, Code: "BF_999", Capacity: 10}}, DefaultPersonalities())
	assert.ErrorContains(t, err, "no personality")

	_, err = New([]domain.Zone{{ID: 1, Code: "BF_001", Capacity: 0}}, DefaultPersonalities())
	assert.ErrorContains(t, err, "capacity")

	bad := DefaultPersonalities()
	p := bad["BF_001"]
	p.NoiseStd = -0.1
	bad["BF_001"] = p
	_, err = New(testZones, bad)
	assert.ErrorContains(t, err, "noise_std")
}

func TestDefaultPersonalityNoiseClasses(t *testing.T) {
	ps := DefaultPersonalities()
	for _, code := range []string{"BF_045", "BF_046"} {
		assert.Equal(t, NoiseEventDriven, ps[code].NoiseStd, code)
	}
	for _, code := range []string{"BF_001", "BF_200"} {
		assert.Equal(t, NoiseSteadyCommercial, ps[code].NoiseStd, code)
	}
	for code, p := range ps {
		assert.NoError(t, p.Validate(), code)
	}
}

func TestSummarize(t *testing.T) {
	obs := []domain.Observation{
		{ZoneCode: "BF_002", OccupancyRate: 0.4},
		{ZoneCode: "BF_001", OccupancyRate: 0.2},
		{ZoneCode: "BF_001", OccupancyRate: 0.6},
	}
	s := Summarize(obs)
	require.Len(t, s, 2)
	assert.Equal(t, "BF_001", s[0].ZoneCode)
	assert.Equal(t, 2, s[0].Count)
	assert.InDelta(t, 0.4, s[0].Mean, 1e-12)
	assert.Equal(t, 0.2, s[0].Min)
	assert.Equal(t, 0.6, s[0].Max)
	assert.Zero(t, s[1].StdDev)
}
