package domain

import "fmt"

// Zone represents a fixed curb-parking blockface
type Zone struct {
	ID        int     `json:"id"`
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	Capacity  int     `json:"capacity"`
}

// Validate rejects zones that would break downstream arithmetic
func (z Zone) Validate() error {
	if z.ID <= 0 {
		return fmt.Errorf("zone %q: id must be positive, got %d", z.Code, z.ID)
	}
	if z.Code == "" {
		return fmt.Errorf("zone %d: code is required", z.ID)
	}
	if z.Capacity <= 0 {
		return fmt.Errorf("zone %s: capacity must be positive, got %d", z.Code, z.Capacity)
	}
	return nil
}

// ZonesResponse wraps a zone listing with metadata
type ZonesResponse struct {
	Data    []Zone `json:"data"`
	Count   int    `json:"count"`
	Success bool   `json:"success"`
}
