package catalog

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/WessleyAI/whachapay/engine/domain"
)

type memModel struct {
	id    string
	name  string
	years map[int]bool // nil means every year
}

type memMake struct {
	id     string
	name   string
	models []memModel
}

// Memory is an immutable in-process catalog. Makes and models get numeric
// codes in alphabetical order, starting at "1".
type Memory struct {
	makes []memMake
}

// NewMemory builds a catalog from vehicles. A vehicle with Year 0 is offered
// in every year. Make and model names are matched case-insensitively.
func NewMemory(vehicles []domain.Vehicle) *Memory {
	type key struct{ mk, model string }
	makeNames := map[string]string{}
	modelNames := map[key]string{}
	years := map[key]map[int]bool{}
	anyYear := map[key]bool{}

	for _, v := range vehicles {
		mk := strings.ToLower(v.Make)
		if _, ok := makeNames[mk]; !ok {
			makeNames[mk] = v.Make
		}
		k := key{mk, strings.ToLower(v.Model)}
		if _, ok := modelNames[k]; !ok {
			modelNames[k] = v.Model
		}
		if v.Year == AnyYear {
			anyYear[k] = true
			continue
		}
		if years[k] == nil {
			years[k] = map[int]bool{}
		}
		years[k][v.Year] = true
	}

	mks := make([]string, 0, len(makeNames))
	for mk := range makeNames {
		mks = append(mks, mk)
	}
	sort.Strings(mks)

	models := make([]key, 0, len(modelNames))
	for k := range modelNames {
		models = append(models, k)
	}
	sort.Slice(models, func(i, j int) bool {
		if models[i].mk != models[j].mk {
			return models[i].mk < models[j].mk
		}
		return models[i].model < models[j].model
	})

	m := &Memory{}
	index := map[string]int{}
	for i, mk := range mks {
		index[mk] = i
		m.makes = append(m.makes, memMake{id: strconv.Itoa(i + 1), name: makeNames[mk]})
	}
	for i, k := range models {
		mm := memModel{id: strconv.Itoa(i + 1), name: modelNames[k]}
		if !anyYear[k] {
			mm.years = years[k]
		}
		j := index[k.mk]
		m.makes[j].models = append(m.makes[j].models, mm)
	}
	return m
}

// DefaultMemory returns a catalog of every supported make and model, offered
// in every year.
func DefaultMemory() *Memory {
	var vs []domain.Vehicle
	for _, mk := range domain.MakeNames() {
		for _, model := range domain.ModelNames(mk) {
			vs = append(vs, domain.Vehicle{Make: mk, Model: model})
		}
	}
	return NewMemory(vs)
}

func (m memModel) offered(year int) bool {
	return year == AnyYear || m.years == nil || m.years[year]
}

func (m *Memory) Makes(_ context.Context, year int) (domain.OptionList, error) {
	out := domain.OptionList{}
	for _, mk := range m.makes {
		for _, model := range mk.models {
			if model.offered(year) {
				out = append(out, domain.Option{Value: mk.id, Label: mk.name})
				break
			}
		}
	}
	return out, nil
}

func (m *Memory) Models(_ context.Context, makeID string, year int) (domain.OptionList, error) {
	out := domain.OptionList{}
	for _, mk := range m.makes {
		if mk.id != makeID {
			continue
		}
		for _, model := range mk.models {
			if model.offered(year) {
				out = append(out, domain.Option{Value: model.id, Label: model.name})
			}
		}
	}
	return out, nil
}

// Vehicles lists every (make, model) name pair, in code order.
func (m *Memory) Vehicles() []domain.Vehicle {
	var out []domain.Vehicle
	for _, mk := range m.makes {
		for _, model := range mk.models {
			out = append(out, domain.Vehicle{Make: mk.name, Model: model.name})
		}
	}
	return out
}
