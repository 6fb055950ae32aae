package pond

import (
	"github.com/sirupsen/logrus"

	"github.com/zoobzio/cell"
)

// Config describes how to assemble a pond store.
type Config struct {
	// Name labels the store in signals. Empty gets a generated name.
	Name string

	// Ducks preloads the pond. Nil starts from InitialDucks.
	Ducks []Duck

	// Log receives one entry per dispatch. Nil disables the logger middleware.
	Log logrus.FieldLogger

	// Metrics receives store callbacks. Nil disables metrics.
	Metrics *Metrics
}

// NewStore builds a pond store running Thunk then Logger around Reducer.
func NewStore(cfg Config) (*cell.Store[[]Duck], error) {
	middlewares := []cell.Middleware[[]Duck]{Thunk[[]Duck]()}
	if cfg.Log != nil {
		middlewares = append(middlewares, Logger(cfg.Log))
	}

	opts := []cell.Option[[]Duck]{
		cell.WithEnhancer(cell.ApplyMiddleware(middlewares...)),
	}
	if cfg.Name != "" {
		opts = append(opts, cell.WithName[[]Duck](cfg.Name))
	}
	if cfg.Ducks != nil {
		opts = append(opts, cell.WithPreloadedState(cfg.Ducks))
	}
	if cfg.Metrics != nil {
		opts = append(opts, cell.WithMetrics[[]Duck](cfg.Metrics))
	}

	return cell.New(Reducer, opts...)
}
