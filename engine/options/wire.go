package options

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/WessleyAI/whachapay/engine/domain"
)

// List is an option list on the wire. It decodes from either a typed array
// [{"value":..,"label":..}] or an HTML string of <option> tags.
type List domain.OptionList

func (l *List) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*l = nil
		return nil
	case len(data) > 0 && data[0] == '"':
		var fragment string
		if err := json.Unmarshal(data, &fragment); err != nil {
			return err
		}
		opts, err := ParseFragment(fragment)
		if err != nil {
			return err
		}
		*l = List(opts)
		return nil
	}
	var opts []domain.Option
	if err := json.Unmarshal(data, &opts); err != nil {
		return fmt.Errorf("option list: %w", err)
	}
	*l = List(opts)
	return nil
}

// Response is the Options Service reply body.
type Response struct {
	Make  *List `json:"make,omitempty"`
	Model *List `json:"model,omitempty"`
}

// fragmentResponse is the reply body in HTML-fragment form.
type fragmentResponse struct {
	Make  string `json:"make"`
	Model string `json:"model"`
}

func newResponse(upd *domain.OptionsUpdate) Response {
	mk, model := List(upd.Make), List(upd.Model)
	return Response{Make: &mk, Model: &model}
}

func newFragmentResponse(upd *domain.OptionsUpdate) fragmentResponse {
	return fragmentResponse{Make: RenderFragment(upd.Make), Model: RenderFragment(upd.Model)}
}

// Update converts a reply into an update. A reply carrying neither list is
// "no update" and yields nil.
func (r Response) Update() *domain.OptionsUpdate {
	if r.Make == nil && r.Model == nil {
		return nil
	}
	upd := &domain.OptionsUpdate{}
	if r.Make != nil {
		upd.Make = domain.OptionList(*r.Make)
	}
	if r.Model != nil {
		upd.Model = domain.OptionList(*r.Model)
	}
	return upd
}

// DecodeUpdate parses a reply body. Empty bodies, null, false, "" and {} are
// all "no update".
func DecodeUpdate(body []byte) (*domain.OptionsUpdate, error) {
	body = bytes.TrimSpace(body)
	switch string(body) {
	case "", "null", "false", `""`, "{}":
		return nil, nil
	}
	var r Response
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("decode options response: %w", err)
	}
	return r.Update(), nil
}
