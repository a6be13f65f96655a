package service

import (
	"fmt"
	"sort"

	"github.com/smartcity/parking/internal/domain"
	"github.com/smartcity/parking/pkg/utils"
)

// ZoneRegistry is the read-only mapping from zone id to zone metadata
type ZoneRegistry struct {
	byID   map[int]domain.Zone
	byCode map[string]domain.Zone
	zones  []domain.Zone
}

// NewZoneRegistry validates zones and indexes them by id and code.
// Duplicate ids or codes and non-positive capacities are configuration errors.
func NewZoneRegistry(zones []domain.Zone) (*ZoneRegistry, error) {
	r := &ZoneRegistry{
		byID:   make(map[int]domain.Zone, len(zones)),
		byCode: make(map[string]domain.Zone, len(zones)),
		zones:  make([]domain.Zone, 0, len(zones)),
	}
	for _, z := range zones {
		if err := z.Validate(); err != nil {
			return nil, fmt.Errorf("registry: %w", err)
		}
		if _, dup := r.byID[z.ID]; dup {
			return nil, fmt.Errorf("registry: duplicate zone id %d", z.ID)
		}
		if _, dup := r.byCode[z.Code]; dup {
			return nil, fmt.Errorf("registry: duplicate zone code %s", z.Code)
		}
		r.byID[z.ID] = z
		r.byCode[z.Code] = z
		r.zones = append(r.zones, z)
	}
	sort.Slice(r.zones, func(i, j int) bool { return r.zones[i].ID < r.zones[j].ID })
	return r, nil
}

// Resolve returns the zone with the given id
func (r *ZoneRegistry) Resolve(id int) (domain.Zone, error) {
	z, ok := r.byID[id]
	if !ok {
		return domain.Zone{}, fmt.Errorf("registry: zone %d: %w", id, domain.ErrNotFound)
	}
	return z, nil
}

// CodeFor returns the stable code of the zone with the given id
func (r *ZoneRegistry) CodeFor(id int) (string, error) {
	z, err := r.Resolve(id)
	if err != nil {
		return "", err
	}
	return z.Code, nil
}

// ResolveCode returns the zone with the given code
func (r *ZoneRegistry) ResolveCode(code string) (domain.Zone, error) {
	z, ok := r.byCode[code]
	if !ok {
		return domain.Zone{}, fmt.Errorf("registry: zone %s: %w", code, domain.ErrNotFound)
	}
	return z, nil
}

// Zones returns all zones ordered by id
func (r *ZoneRegistry) Zones() []domain.Zone {
	out := make([]domain.Zone, len(r.zones))
	copy(out, r.zones)
	return out
}

// ZoneDistance pairs a zone with its distance from a query point
type ZoneDistance struct {
	domain.Zone
	DistanceKm float64 `json:"distance_km"`
}

// Nearby returns zones within radiusKm of (lat, lng), nearest first
func (r *ZoneRegistry) Nearby(lat, lng, radiusKm float64) []ZoneDistance {
	out := make([]ZoneDistance, 0)
	for _, z := range r.zones {
		d := utils.Haversine(lat, lng, z.Latitude, z.Longitude)
		if d <= radiusKm {
			out = append(out, ZoneDistance{Zone: z, DistanceKm: utils.RoundTo(d, 3)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return out
}

// DefaultZones returns the built-in Seattle blockface table
func DefaultZones() []domain.Zone {
	return []domain.Zone{
		{ID: 1, Code: "BF_001", Name: "Downtown Pike St", Latitude: 47.6105, Longitude: -122.3380, Capacity: 20},
		{ID: 2, Code: "BF_002", Name: "Downtown 1st Ave", Latitude: 47.6050, Longitude: -122.3350, Capacity: 24},
		{ID: 3, Code: "BF_003", Name: "Downtown 3rd Ave", Latitude: 47.6080, Longitude: -122.3310, Capacity: 18},
		{ID: 4, Code: "BF_120", Name: "Capitol Hill - Broadway", Latitude: 47.6240, Longitude: -122.3210, Capacity: 22},
		{ID: 5, Code: "BF_200", Name: "University District - University Way", Latitude: 47.6650, Longitude: -122.3130, Capacity: 26},
		{ID: 6, Code: "BF_045", Name: "Stadium District - Occidental", Latitude: 47.5920, Longitude: -122.3330, Capacity: 35},
		{ID: 7, Code: "BF_046", Name: "Stadium District - 1st Ave S", Latitude: 47.5970, Longitude: -122.3280, Capacity: 30},
		{ID: 8, Code: "BF_121", Name: "Capitol Hill - Pike St", Latitude: 47.6180, Longitude: -122.3150, Capacity: 16},
		{ID: 9, Code: "BF_201", Name: "University District - 45th St", Latitude: 47.6590, Longitude: -122.3080, Capacity: 20},
		{ID: 10, Code: "BF_202", Name: "Fremont - Fremont Ave", Latitude: 47.6505, Longitude: -122.3493, Capacity: 28},
	}
}
