package atlas

import (
	"time"

	"map-atlas/core/mapdata"
	"map-atlas/core/raster"
	"map-atlas/core/source"
)

// SummaryResponse describes the published snapshot.
type SummaryResponse struct {
	Seq        int64             `json:"seq"`
	Built      time.Time         `json:"built"`
	Roots      []source.Root     `json:"roots"`
	Tables     mapdata.Summary   `json:"tables"`
	Views      []raster.View     `json:"views"`
	ViewErrors map[string]string `json:"view_errors,omitempty"`
	Issues     int               `json:"issues"`
	HasErrors  bool              `json:"has_errors"`
	CanUndo    bool              `json:"can_undo"`
	CanRedo    bool              `json:"can_redo"`
}

// ProvinceResponse is a province with its state and strategic region.
type ProvinceResponse struct {
	*mapdata.Province
	State      int    `json:"state,omitempty"`
	StateName  string `json:"state_name,omitempty"`
	Region     int    `json:"region,omitempty"`
	RegionName string `json:"region_name,omitempty"`
	Owner      string `json:"owner,omitempty"`
}

// StateResponse is a state with its localised name.
type StateResponse struct {
	*mapdata.State
	LocalisedName string `json:"localised_name"`
}

// RegionResponse is a strategic region with its localised name.
type RegionResponse struct {
	*mapdata.StrategicRegion
	LocalisedName string `json:"localised_name"`
}

// CountryResponse is a country with the states it owns.
type CountryResponse struct {
	*mapdata.Country
	LocalisedName string `json:"localised_name"`
	States        []int  `json:"states"`
}
