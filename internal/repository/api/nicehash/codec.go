package nicehash

import (
	stdjson "encoding/json"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RawMessage is an undecoded JSON value as returned by the platform.
type RawMessage = stdjson.RawMessage

// encodeBody serializes body once. The returned bytes are both signed and
// sent. A nil body yields nil.
func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	return json.Marshal(body)
}

func decodeInto(raw RawMessage, out any) error {
	switch v := out.(type) {
	case nil:
		return nil
	case *RawMessage:
		*v = raw
		return nil
	}
	return json.Unmarshal(raw, out)
}
