package pond

import (
	"slices"

	"github.com/zoobzio/cell"
)

// Action types understood by Reducer.
const (
	AddDuck    = "ADD_DUCK"
	RemoveDuck = "REMOVE_DUCK"
)

// Duck is one resident of the pond.
type Duck struct {
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color" yaml:"color"`
}

// InitialDucks is the pond before any action.
var InitialDucks = []Duck{
	{Name: "Daffy", Color: "black"},
	{Name: "Statey", Color: "mystery"},
}

// AddDuckReducer appends the action's "duck" payload on ADD_DUCK.
// A nil pond starts from InitialDucks. Every other action, and an ADD_DUCK
// without a usable payload, returns ducks unchanged.
func AddDuckReducer(ducks []Duck, action cell.Action) []Duck {
	if ducks == nil {
		ducks = InitialDucks
	}
	if action.TypeString() != AddDuck {
		return ducks
	}
	d, ok := duckFrom(action["duck"])
	if !ok {
		return ducks
	}
	return append(slices.Clip(ducks), d)
}

// RemoveDuckReducer drops every duck named by the action's "name" entry on
// REMOVE_DUCK. Removing an absent duck returns ducks unchanged.
func RemoveDuckReducer(ducks []Duck, action cell.Action) []Duck {
	if ducks == nil {
		ducks = InitialDucks
	}
	if action.TypeString() != RemoveDuck {
		return ducks
	}
	name, _ := action["name"].(string)
	if !slices.ContainsFunc(ducks, func(d Duck) bool { return d.Name == name }) {
		return ducks
	}
	return slices.DeleteFunc(slices.Clone(ducks), func(d Duck) bool { return d.Name == name })
}

// Reducer handles both ADD_DUCK and REMOVE_DUCK.
func Reducer(ducks []Duck, action cell.Action) []Duck {
	return RemoveDuckReducer(AddDuckReducer(ducks, action), action)
}

// AddDuckAction builds an ADD_DUCK action.
func AddDuckAction(d Duck) cell.Action {
	return cell.Action{cell.ActionTypeKey: AddDuck, "duck": d}
}

// RemoveDuckAction builds a REMOVE_DUCK action.
func RemoveDuckAction(name string) cell.Action {
	return cell.Action{cell.ActionTypeKey: RemoveDuck, "name": name}
}

// duckFrom accepts a Duck, a *Duck or a decoded record with name and color.
func duckFrom(v any) (Duck, bool) {
	switch d := v.(type) {
	case Duck:
		return d, true
	case *Duck:
		if d == nil {
			return Duck{}, false
		}
		return *d, true
	case map[string]any:
		name, ok := d["name"].(string)
		if !ok {
			return Duck{}, false
		}
		color, _ := d["color"].(string)
		return Duck{Name: name, Color: color}, true
	default:
		return Duck{}, false
	}
}
