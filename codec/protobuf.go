package codec

import (
	"fmt"

	"google.golang.org/protobuf/proto"
)

// Protobuf encodes protobuf message types. T must be a pointer to a
// generated message struct, e.g. Protobuf[*pb.User]{}.
type Protobuf[T proto.Message] struct{}

func (Protobuf[T]) Encode(v T) ([]byte, error) {
	return proto.Marshal(v)
}

func (Protobuf[T]) Decode(b []byte) (T, error) {
	var zero T
	msg, ok := zero.ProtoReflect().New().Interface().(T)
	if !ok {
		return zero, fmt.Errorf("codec: cannot instantiate message type %T", zero)
	}
	if err := proto.Unmarshal(b, msg); err != nil {
		return zero, err
	}
	return msg, nil
}
