package models

import jsoniter "github.com/json-iterator/go"

// json is shared by every decoder in the package.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Field records whether a JSON key was present at all, which a plain pointer
// cannot tell apart from an explicit null.
type Field[T any] struct {
	Value *T
	Set   bool
}

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if string(b) == "null" {
		f.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	f.Value = &v
	return nil
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*f.Value)
}
