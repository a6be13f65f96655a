// Package generator produces synthetic hourly occupancy series with a
// distinct temporal "personality" per zone. It is used offline to build
// training and test fixtures when no sensor data is available.
package generator

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/smartcity/parking/internal/domain"
	"github.com/smartcity/parking/pkg/utils"
)

// Synthetic rates never reach a fully empty or full blockface.
const (
	MinRate = 0.05
	MaxRate = 0.98
)

// Options controls one generation run
type Options struct {
	Start   time.Time
	End     time.Time // inclusive
	Seed    uint64
	Workers int // zones generated concurrently; <= 1 runs sequentially
}

// Generator produces observation series for a fixed ordered zone list
type Generator struct {
	zones         []domain.Zone
	personalities []Personality
}

// New pairs each zone with its personality. Every zone needs a valid entry.
func New(zones []domain.Zone, personalities map[string]Personality) (*Generator, error) {
	if len(zones) == 0 {
		return nil, errors.New("generator: no zones configured")
	}
	g := &Generator{
		zones:         make([]domain.Zone, len(zones)),
		personalities: make([]Personality, len(zones)),
	}
	copy(g.zones, zones)
	for i, z := range zones {
		if err := z.Validate(); err != nil {
			return nil, fmt.Errorf("generator: %w", err)
		}
		p, ok := personalities[z.Code]
		if !ok {
			return nil, fmt.Errorf("generator: no personality for zone %s", z.Code)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("generator: zone %s: %w", z.Code, err)
		}
		g.personalities[i] = p
	}
	return g, nil
}

// Rate returns the clipped occupancy rate of a personality at t with the
// given noise sample. At most one time-of-day adjustment applies per hour.
func Rate(p Personality, t time.Time, noise float64) float64 {
	rate := p.BaseRate

	switch domain.TimeBucketFor(t.Hour()) {
	case domain.BucketRush:
		rate *= p.RushMultiplier
	case domain.BucketLunch:
		rate += p.LunchBoost
	case domain.BucketNight:
		rate += p.NightOffset
	}

	if domain.IsWeekend(t) {
		rate += p.WeekendOffset
	}

	rate += noise
	return utils.Clamp(rate, MinRate, MaxRate)
}

// Observe converts a rate into a stored observation for zone at t
func Observe(zone domain.Zone, t time.Time, rate float64) domain.Observation {
	return domain.Observation{
		ZoneCode:       zone.Code,
		Timestamp:      t,
		OccupiedSpaces: int(math.Floor(rate * float64(zone.Capacity))),
		TotalSpaces:    zone.Capacity,
		OccupancyRate:  utils.RoundTo(rate, 3),
	}
}

// Generate produces observations for every zone and hour in [Start, End],
// ordered by timestamp and then by the configured zone order.
//
// Each zone draws noise from its own source seeded from (Seed, zone index),
// so the output is identical for any worker count.
func (g *Generator) Generate(opts Options) ([]domain.Observation, error) {
	if opts.End.Before(opts.Start) {
		return nil, fmt.Errorf("generator: end %s before start %s",
			domain.FormatTimestamp(opts.End), domain.FormatTimestamp(opts.Start))
	}
	start := opts.Start.Truncate(time.Hour)
	hours := int(opts.End.Sub(start)/time.Hour) + 1

	perZone := make([][]domain.Observation, len(g.zones))
	var eg errgroup.Group
	if opts.Workers > 1 {
		eg.SetLimit(opts.Workers)
	} else {
		eg.SetLimit(1)
	}
	for i := range g.zones {
		eg.Go(func() error {
			perZone[i] = g.generateZone(i, start, hours, opts.Seed)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := make([]domain.Observation, 0, hours*len(g.zones))
	for h := 0; h < hours; h++ {
		for z := range g.zones {
			out = append(out, perZone[z][h])
		}
	}
	return out, nil
}

func (g *Generator) generateZone(idx int, start time.Time, hours int, seed uint64) []domain.Observation {
	zone, p := g.zones[idx], g.personalities[idx]
	rng := rand.New(rand.NewPCG(seed, uint64(idx)))

	series := make([]domain.Observation, hours)
	for h := 0; h < hours; h++ {
		t := start.Add(time.Duration(h) * time.Hour)
		noise := rng.NormFloat64() * p.NoiseStd
		series[h] = Observe(zone, t, Rate(p, t, noise))
	}
	return series
}
