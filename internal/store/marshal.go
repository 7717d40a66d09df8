package store

import (
	"fmt"

	"github.com/openrails/openrails-sub024/internal/codec"
	"github.com/openrails/openrails-sub024/internal/command"
)

// marshalCommand converts a command to its payload BLOB, a single codec
// record.
func marshalCommand(c command.Command) ([]byte, error) {
	data, err := codec.AppendRecord(nil, c)
	if err != nil {
		return nil, fmt.Errorf("marshal command: %w", err)
	}
	return data, nil
}

// unmarshalCommand decodes a payload BLOB and checks it against the
// denormalized columns stored beside it.
func unmarshalCommand(payload []byte, kind, shape int64, t float64) (command.Command, error) {
	c, err := codec.DecodeRecord(payload)
	if err != nil {
		return command.Command{}, fmt.Errorf("unmarshal command: %w", err)
	}
	if int64(c.Kind()) != kind || int64(c.Shape()) != shape || c.Time() != t {
		return command.Command{}, fmt.Errorf("unmarshal command: %w: columns (kind=%d shape=%d time=%v) disagree with payload %q",
			codec.ErrCorruptLog, kind, shape, t, c.Describe())
	}
	return c, nil
}
