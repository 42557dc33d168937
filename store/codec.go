package store

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func encodeUint64(v uint64) ([]byte, error) {
	data, err := proto.Marshal(wrapperspb.UInt64(v))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value (proto): %w", err)
	}
	return data, nil
}

// decodeUint64 treats a missing value as zero
func decodeUint64(data []byte) (uint64, error) {
	if data == nil {
		return 0, nil
	}
	var v wrapperspb.UInt64Value
	if err := proto.Unmarshal(data, &v); err != nil {
		return 0, fmt.Errorf("failed to unmarshal value (proto): %w", err)
	}
	return v.GetValue(), nil
}
