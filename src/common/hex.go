package common

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// EncodeToString returns the UPPERCASE string representation of hexBytes with
// the 0X prefix.
func EncodeToString(hexBytes []byte) string {
	return fmt.Sprintf("0X%X", hexBytes)
}

// DecodeFromString converts a hex string with a 0X (or 0x) prefix to a byte
// slice.
func DecodeFromString(hexString string) ([]byte, error) {
	if len(hexString) < 2 || !strings.EqualFold(hexString[:2], "0x") {
		return nil, fmt.Errorf("hex string %q is missing the 0X prefix", hexString)
	}
	return hex.DecodeString(hexString[2:])
}
