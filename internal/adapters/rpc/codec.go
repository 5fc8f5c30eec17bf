package rpc

import (
	"encoding/json"

	"go.trai.ch/thingsgate/internal/core/domain"
	"go.trai.ch/zerr"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Field names of the Call messages.
const (
	fieldName   = "name"
	fieldParams = "params"
	fieldResult = "result"
	fieldTools  = "tools"
)

// normalize round-trips v through JSON so that structpb accepts it.
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, zerr.Wrap(domain.ErrParamsEncoding, err.Error())
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, zerr.Wrap(domain.ErrParamsEncoding, err.Error())
	}
	return out, nil
}

// toStruct encodes a JSON object value as a Struct.
func toStruct(v any) (*structpb.Struct, error) {
	n, err := normalize(v)
	if err != nil {
		return nil, err
	}
	m, ok := n.(map[string]any)
	if !ok {
		m = map[string]any{}
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, zerr.Wrap(domain.ErrParamsEncoding, err.Error())
	}
	return s, nil
}

// toValue encodes any JSON value.
func toValue(v any) (*structpb.Value, error) {
	n, err := normalize(v)
	if err != nil {
		return nil, err
	}
	val, err := structpb.NewValue(n)
	if err != nil {
		return nil, zerr.Wrap(domain.ErrParamsEncoding, err.Error())
	}
	return val, nil
}

// decode unmarshals a Struct into out through its JSON form.
func decode(s *structpb.Struct, out any) error {
	if s == nil {
		s = &structpb.Struct{}
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return zerr.Wrap(err, "failed to encode message")
	}
	if err := json.Unmarshal(data, out); err != nil {
		return zerr.Wrap(err, "failed to decode message")
	}
	return nil
}

func callRequest(op string, params domain.Params) (*structpb.Struct, error) {
	p, err := toStruct(map[string]any(params))
	if err != nil {
		return nil, zerr.With(err, "operation", op)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldName:   structpb.NewStringValue(op),
		fieldParams: structpb.NewStructValue(p),
	}}, nil
}

func parseCallRequest(in *structpb.Struct) (string, domain.Params) {
	fields := in.GetFields()
	params := domain.Params(fields[fieldParams].GetStructValue().AsMap())
	return fields[fieldName].GetStringValue(), params
}
