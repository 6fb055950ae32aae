package pond

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/zoobzio/cell"
)

// ThunkFunc is a deferred action. Dispatching one through the Thunk
// middleware calls it with the store's dispatch and state accessor instead
// of sending it to the reducer.
type ThunkFunc[S any] func(dispatch cell.Dispatch, getState func() S) (any, error)

// Thunk returns a middleware that runs ThunkFunc actions and forwards
// everything else. The dispatch handed to a thunk enters the full chain.
func Thunk[S any]() cell.Middleware[S] {
	return func(api cell.API[S]) func(cell.Dispatch) cell.Dispatch {
		return func(next cell.Dispatch) cell.Dispatch {
			return func(action any) (any, error) {
				switch fn := action.(type) {
				case ThunkFunc[S]:
					return fn(api.Dispatch, api.GetState)
				case func(cell.Dispatch, func() S) (any, error):
					return fn(api.Dispatch, api.GetState)
				default:
					return next(action)
				}
			}
		}
	}
}

// Logger returns a middleware that logs every action reaching it along with
// the pond size after the dispatch. Rejected actions are logged at warn.
func Logger(log logrus.FieldLogger) cell.Middleware[[]Duck] {
	return func(api cell.API[[]Duck]) func(cell.Dispatch) cell.Dispatch {
		return func(next cell.Dispatch) cell.Dispatch {
			return func(action any) (any, error) {
				before := api.GetState()
				result, err := next(action)

				entry := log.WithField("action", describe(action))
				if err != nil {
					entry.WithError(err).Warn("dispatch rejected")
					return result, err
				}

				after := api.GetState()
				entry.WithFields(logrus.Fields{
					"ducks":   len(after),
					"changed": !sameDucks(before, after),
				}).Debug("dispatched")
				return result, err
			}
		}
	}
}

func describe(action any) string {
	switch a := action.(type) {
	case cell.Action:
		return a.TypeString()
	case map[string]any:
		return cell.Action(a).TypeString()
	default:
		return fmt.Sprintf("<%T>", action)
	}
}

// sameDucks reports whether a and b are the same slice.
func sameDucks(a, b []Duck) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}
