package domain

import (
	"testing"
)

// FuzzParseEntityID verifies that parsing never panics on arbitrary input and
// that every accepted ID round-trips through its string form unchanged.
func FuzzParseEntityID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add("550e8400-e29b-41d4-a716-446655440000\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseEntityID(input)
		if err != nil {
			return
		}
		if id.IsNil() {
			t.Error("nil UUID was accepted")
		}
		roundTrip, err2 := ParseEntityID(id.String())
		if err2 != nil {
			t.Errorf("accepted ID failed round-trip: %v", err2)
		}
		if roundTrip != id {
			t.Error("round-trip changed ID value")
		}
	})
}
