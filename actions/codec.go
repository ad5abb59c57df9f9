package actions

import (
	"fmt"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/ava-labs/hypersdk/codec"

	"github.com/radicleart/bigmarket-dao/market"
)

// engine executes every action. Execution is replayed on every node, so it does not log.
var engine = market.NewDefault(logging.NoLog{})

// call runs an action as actor at the block timestamp, which is the engine's height.
func call(timestamp int64, actor codec.Address) market.Call {
	return market.Call{Caller: actor, Height: uint64(timestamp)}
}

// marshal packs typeID followed by the linear encoding of v.
func marshal(typeID uint8, v any, maxSize int) []byte {
	p := &wrappers.Packer{
		Bytes:   make([]byte, 0, maxSize),
		MaxSize: maxSize,
	}
	p.PackByte(typeID)
	_ = codec.LinearCodec.MarshalInto(v, p)
	return p.Bytes
}

// unmarshal checks the leading type id and decodes the rest of b into v.
func unmarshal(typeID uint8, b []byte, v any) error {
	if len(b) == 0 {
		return ErrUnmarshalEmptyAction
	}
	if b[0] != typeID {
		return fmt.Errorf("%w: %d != %d", ErrUnexpectedTypeID, b[0], typeID)
	}
	return codec.LinearCodec.UnmarshalFrom(&wrappers.Packer{Bytes: b[1:]}, v)
}
