package net

import (
	"github.com/mosaicnetworks/txbench/src/types"
	"google.golang.org/grpc/encoding"
)

// CodecName is the content-subtype of admission-control messages.
const CodecName = "json"

// jsonCodec carries the plain Go message types of the types package over gRPC
// using the same codec the rest of the project encodes with.
type jsonCodec struct{}

var _ encoding.Codec = jsonCodec{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return types.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return types.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return CodecName
}

// Codec returns the codec used by GRPCClient and NewGRPCServer.
func Codec() encoding.Codec {
	return jsonCodec{}
}
