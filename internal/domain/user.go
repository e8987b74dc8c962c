// Package domain contains entity without logic, just meta-data
package domain

import "strconv"

// UserID identifies a participant for the whole session lifetime.
// Zero means "nobody".
type UserID uint32

func (id UserID) String() string { return strconv.FormatUint(uint64(id), 10) }

// NetworkQuality is the per-participant uplink/downlink level reported by the engine (0..5).
type NetworkQuality struct {
	Uplink   int `json:"uplink"`
	Downlink int `json:"downlink"`
}
