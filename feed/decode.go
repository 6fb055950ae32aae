package feed

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/zoobzio/cell"
)

// ErrNotAction is returned when a document holds something other than an
// action record or a list of action records.
var ErrNotAction = errors.New("document is not an action")

// Decode parses one document into actions. A document is either a single
// record or a list of records; blank documents yield no actions. Records are
// not checked for a "type" entry here, the store does that on dispatch.
func Decode(codec Codec, data []byte) ([]cell.Action, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var doc any
	if err := codec.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", codec.ContentType(), err)
	}

	switch v := doc.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return []cell.Action{cell.Action(v)}, nil
	case []any:
		actions := make([]cell.Action, 0, len(v))
		for i, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: item %d is %T", ErrNotAction, i, item)
			}
			actions = append(actions, cell.Action(m))
		}
		return actions, nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrNotAction, doc)
	}
}
