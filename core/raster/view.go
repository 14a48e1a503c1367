package raster

import (
	"fmt"
	"strings"
)

// View selects which entity dimension a thematic raster shows.
type View string

const (
	// ViewProvince is an identity copy of the province bitmap.
	ViewProvince View = "province"
	// ViewState paints every province in the colour of its state.
	ViewState View = "state"
	// ViewRegion paints every province in the colour of its strategic region.
	ViewRegion View = "region"
	// ViewOwner paints every province in the colour of its state owner's country.
	ViewOwner View = "owner"
)

// Views lists every view in rendering order.
func Views() []View {
	return []View{ViewProvince, ViewState, ViewRegion, ViewOwner}
}

// ParseView accepts a view name, case-insensitively. "nation" and
// "strategic" are accepted as aliases.
func ParseView(s string) (View, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "province", "provinces":
		return ViewProvince, nil
	case "state", "states":
		return ViewState, nil
	case "region", "regions", "strategic":
		return ViewRegion, nil
	case "owner", "nation":
		return ViewOwner, nil
	}
	return "", fmt.Errorf("unknown view %q", s)
}
