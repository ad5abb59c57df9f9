package genesis

import (
	"errors"
	"fmt"

	"github.com/ava-labs/hypersdk/codec"
	"github.com/btcsuite/btcd/btcutil/bech32"

	"github.com/radicleart/bigmarket-dao/consts"
)

var ErrAddressLength = errors.New("decoded address has the wrong length")

// FormatAddress renders addr as bech32 with the VM's human readable part.
func FormatAddress(addr codec.Address) (string, error) {
	data, err := bech32.ConvertBits(addr[:], 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(consts.HRP, data)
}

// ParseAddress decodes a bech32 address. Any human readable part is accepted.
func ParseAddress(s string) (codec.Address, error) {
	_, data5bit, err := bech32.Decode(s)
	if err != nil {
		return codec.EmptyAddress, fmt.Errorf("failed to decode bech32 address %s: %w", s, err)
	}
	data8bit, err := bech32.ConvertBits(data5bit, 5, 8, false)
	if err != nil {
		return codec.EmptyAddress, fmt.Errorf("failed to convert bech32 data bits for address %s: %w", s, err)
	}
	if len(data8bit) != codec.AddressLen {
		return codec.EmptyAddress, fmt.Errorf("%w: %s decodes to %d bytes, expected %d", ErrAddressLength, s, len(data8bit), codec.AddressLen)
	}
	var addr codec.Address
	copy(addr[:], data8bit)
	return addr, nil
}
