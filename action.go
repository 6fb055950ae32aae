package cell

import "fmt"

// ActionTypeKey is the key holding an action's discriminant.
const ActionTypeKey = "type"

// InitActionType is dispatched once, internally, when a store is created so
// the reducer can compute its initial state. Reducers should treat it like
// any unknown type and fall through to their default branch.
const InitActionType = "@@cell/INIT"

// Action is a request for a state transition. The "type" entry is mandatory;
// every other entry is payload defined by the caller.
//
//	store.Dispatch(cell.Action{"type": "ADD_DUCK", "duck": duck})
type Action map[string]any

// Type returns the discriminant and whether it is present at all.
func (a Action) Type() (any, bool) {
	t, ok := a[ActionTypeKey]
	return t, ok
}

// TypeString renders the discriminant for signals and logs.
// Absent discriminants render as an empty string.
func (a Action) TypeString() string {
	t, ok := a.Type()
	if !ok {
		return ""
	}
	if s, ok := t.(string); ok {
		return s
	}
	return fmt.Sprint(t)
}

// asAction checks that v is a non-nil action record carrying a discriminant.
func asAction(v any) (Action, error) {
	var a Action
	switch t := v.(type) {
	case Action:
		a = t
	case map[string]any:
		a = Action(t)
	default:
		return nil, fmt.Errorf("%w: action must be a record, got %T", ErrTypeMismatch, v)
	}
	if a == nil {
		return nil, fmt.Errorf("%w: action must be a record, got nil", ErrTypeMismatch)
	}
	if _, ok := a.Type(); !ok {
		return nil, fmt.Errorf("%w: action has no %q entry", ErrInvalidAction, ActionTypeKey)
	}
	return a, nil
}

func initAction() Action {
	return Action{ActionTypeKey: InitActionType}
}
