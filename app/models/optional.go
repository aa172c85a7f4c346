package models

import "encoding/json"

// OptionalUint is a patch field that distinguishes an absent JSON field from
// an explicit null, so a nullable reference can be cleared by a partial
// update. The zero value means the field was not present.
type OptionalUint struct {
	Set   bool
	Value *uint
}

func (o *OptionalUint) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

func (o OptionalUint) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Value)
}
