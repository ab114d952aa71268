package ai

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// Model is a model advertised by the service.
type Model struct {
	ID          string
	DisplayName string
	OwnedBy     string
}

// Name returns the display name, falling back to the ID.
func (m Model) Name() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.ID
}

// ModelIDs returns the IDs of models in order.
func ModelIDs(models []Model) []string {
	ids := make([]string, len(models))
	for i, m := range models {
		ids[i] = m.ID
	}
	return ids
}

// FindModel looks a model up by ID or display name.
func FindModel(models []Model, name string) (Model, bool) {
	for _, m := range models {
		if m.ID == name || (m.DisplayName != "" && m.DisplayName == name) {
			return m, true
		}
	}
	return Model{}, false
}

// modelsShape tags the accepted layouts of the model listing body.
type modelsShape int

const (
	shapeUnknown  modelsShape = iota
	shapeList                 // [ {...}, ... ]
	shapeEnvelope             // {"data": [ {...}, ... ]}
)

// envelopeKeys are the object keys that may hold the model list.
var envelopeKeys = []string{"data", "models"}

var modelsAdapters = map[modelsShape]func(gjson.Result) ([]Model, error){
	shapeList:     adaptModelList,
	shapeEnvelope: adaptModelEnvelope,
}

var errUnknownModelsShape = errors.New("expected a list of models or an object with a data list")

func detectModelsShape(root gjson.Result) modelsShape {
	switch {
	case root.IsArray():
		return shapeList
	case root.IsObject():
		for _, key := range envelopeKeys {
			if root.Get(key).IsArray() {
				return shapeEnvelope
			}
		}
	}
	return shapeUnknown
}

func parseModels(body []byte) ([]Model, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("response is not valid JSON")
	}
	root := gjson.ParseBytes(body)
	adapt, ok := modelsAdapters[detectModelsShape(root)]
	if !ok {
		return nil, errUnknownModelsShape
	}
	return adapt(root)
}

func adaptModelEnvelope(root gjson.Result) ([]Model, error) {
	for _, key := range envelopeKeys {
		if list := root.Get(key); list.IsArray() {
			return adaptModelList(list)
		}
	}
	return nil, errUnknownModelsShape
}

func adaptModelList(list gjson.Result) ([]Model, error) {
	models := []Model{}
	var err error
	list.ForEach(func(_, item gjson.Result) bool {
		var m Model
		m, err = modelFromDescriptor(item)
		if err != nil {
			err = fmt.Errorf("model %d: %w", len(models), err)
			return false
		}
		models = append(models, m)
		return true
	})
	if err != nil {
		return nil, err
	}
	return models, nil
}

// modelFromDescriptor accepts a bare name string or an object carrying
// "id" (or "name").
func modelFromDescriptor(item gjson.Result) (Model, error) {
	if item.Type == gjson.String {
		if item.Str == "" {
			return Model{}, errors.New("empty model name")
		}
		return Model{ID: item.Str}, nil
	}
	if !item.IsObject() {
		return Model{}, fmt.Errorf("unexpected descriptor %s", item.Raw)
	}

	m := Model{
		ID:      item.Get("id").String(),
		OwnedBy: item.Get("owned_by").String(),
	}
	name := item.Get("name").String()
	if m.ID == "" {
		m.ID = name
	} else if name != m.ID {
		m.DisplayName = name
	}
	if m.ID == "" {
		return Model{}, errors.New("descriptor has neither id nor name")
	}
	return m, nil
}
