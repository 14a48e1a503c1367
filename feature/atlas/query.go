package atlas

import (
	"bytes"
	"fmt"
	"sort"

	"map-atlas/core/mapdata"
	"map-atlas/core/raster"
	"map-atlas/core/store"
)

// NotFoundError reports a query for an entity the snapshot does not have.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// Summary describes the published snapshot.
func (s *Service) Summary() (*SummaryResponse, error) {
	snap, err := s.Current()
	if err != nil {
		return nil, err
	}
	resp := &SummaryResponse{
		Seq:       snap.Seq,
		Built:     snap.Built,
		Roots:     snap.Roots,
		Tables:    snap.Model.Summary(),
		Issues:    snap.Report.Len(),
		HasErrors: snap.Report.HasErrors(),
		CanUndo:   s.store.CanUndo(),
		CanRedo:   s.store.CanRedo(),
	}
	for _, v := range raster.Views() {
		if _, ok := snap.Views[v]; ok {
			resp.Views = append(resp.Views, v)
		}
		if err, ok := snap.ViewErrors[v]; ok {
			if resp.ViewErrors == nil {
				resp.ViewErrors = make(map[string]string)
			}
			resp.ViewErrors[string(v)] = err.Error()
		}
	}
	return resp, nil
}

// Province returns province id with its memberships.
func (s *Service) Province(id int) (*ProvinceResponse, error) {
	snap, err := s.Current()
	if err != nil {
		return nil, err
	}
	p, ok := snap.Model.Provinces[id]
	if !ok {
		return nil, &NotFoundError{Kind: "province", ID: fmt.Sprint(id)}
	}
	return provinceResponse(snap, p), nil
}

// ProvinceAt resolves a province bitmap colour.
func (s *Service) ProvinceAt(c mapdata.RGB) (*ProvinceResponse, error) {
	snap, err := s.Current()
	if err != nil {
		return nil, err
	}
	p, ok := snap.Model.ProvinceByColor(c)
	if !ok {
		return nil, &NotFoundError{Kind: "province color", ID: c.String()}
	}
	return provinceResponse(snap, p), nil
}

func provinceResponse(snap *store.Snapshot, p *mapdata.Province) *ProvinceResponse {
	resp := &ProvinceResponse{Province: p}
	if st, ok := snap.Model.StateOf(p.ID); ok {
		resp.State = st.ID
		resp.StateName = snap.Localise(st.Name)
		resp.Owner = st.Owner
	}
	if r, ok := snap.Model.RegionOf(p.ID); ok {
		resp.Region = r.ID
		resp.RegionName = snap.Localise(r.Name)
	}
	return resp
}

// State returns state id.
func (s *Service) State(id int) (*StateResponse, error) {
	snap, err := s.Current()
	if err != nil {
		return nil, err
	}
	st, ok := snap.Model.States[id]
	if !ok {
		return nil, &NotFoundError{Kind: "state", ID: fmt.Sprint(id)}
	}
	return &StateResponse{State: st, LocalisedName: snap.Localise(st.Name)}, nil
}

// Region returns strategic region id.
func (s *Service) Region(id int) (*RegionResponse, error) {
	snap, err := s.Current()
	if err != nil {
		return nil, err
	}
	r, ok := snap.Model.Regions[id]
	if !ok {
		return nil, &NotFoundError{Kind: "strategic region", ID: fmt.Sprint(id)}
	}
	return &RegionResponse{StrategicRegion: r, LocalisedName: snap.Localise(r.Name)}, nil
}

// Country returns country tag with the states it owns.
func (s *Service) Country(tag string) (*CountryResponse, error) {
	snap, err := s.Current()
	if err != nil {
		return nil, err
	}
	c, ok := snap.Model.Countries[tag]
	if !ok {
		return nil, &NotFoundError{Kind: "country", ID: tag}
	}
	states := []int{}
	for _, st := range snap.Model.States {
		if st.Owner == tag {
			states = append(states, st.ID)
		}
	}
	sort.Ints(states)
	return &CountryResponse{Country: c, LocalisedName: snap.Localise(tag), States: states}, nil
}

// Localise looks up key in the merged localisation.
func (s *Service) Localise(key string) (string, error) {
	snap, err := s.Current()
	if err != nil {
		return "", err
	}
	v, ok := snap.Localisation[key]
	if !ok {
		return "", &NotFoundError{Kind: "localisation key", ID: key}
	}
	return v, nil
}

// RenderView encodes a rendered view. A view that failed returns its error.
func (s *Service) RenderView(view raster.View, format raster.Format) ([]byte, error) {
	snap, err := s.Current()
	if err != nil {
		return nil, err
	}
	img, ok := snap.Views[view]
	if !ok {
		if verr, failed := snap.ViewErrors[view]; failed {
			return nil, verr
		}
		return nil, &NotFoundError{Kind: "view", ID: string(view)}
	}
	var buf bytes.Buffer
	if err := raster.Encode(&buf, img, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
