package types

import (
	"bytes"

	"github.com/ugorji/go/codec"
)

// Marshal encodes v with the codec JSON handle.
func Marshal(v interface{}) ([]byte, error) {
	var b bytes.Buffer

	jh := new(codec.JsonHandle)
	jh.Canonical = true

	enc := codec.NewEncoder(&b, jh)

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// Unmarshal decodes data, produced by Marshal, into v.
func Unmarshal(data []byte, v interface{}) error {
	b := bytes.NewBuffer(data)

	jh := new(codec.JsonHandle)

	dec := codec.NewDecoder(b, jh)

	return dec.Decode(v)
}
