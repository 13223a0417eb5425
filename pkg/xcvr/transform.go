package xcvr

import (
	"fmt"

	"github.com/robotalks/upshift/pkg/periph"
)

// Shift is the amount subtracted from each data byte.
const Shift = 32

const dataMask periph.Unit = 0xff

// Transform maps a received unit to the unit to transmit. underflow reports
// the data byte was below Shift and the policy decided the result.
type Transform func(in periph.Unit) (out periph.Unit, underflow bool)

// Upshift subtracts Shift from the data byte ('a'..'z' become 'A'..'Z').
// Data bytes below Shift are passed through unchanged. Bits above the data
// byte are kept as received.
func Upshift(in periph.Unit) (periph.Unit, bool) {
	data := in & dataMask
	if data < Shift {
		return in, true
	}
	return in&^dataMask | (data - Shift), false
}

// Wrap subtracts Shift from the data byte modulo 256.
func Wrap(in periph.Unit) (periph.Unit, bool) {
	data := in & dataMask
	return in&^dataMask | ((data - Shift) & dataMask), data < Shift
}

// DefaultTransform is the policy name of Upshift.
const DefaultTransform = "passthrough"

// Transforms maps policy names to Transform.
var Transforms = map[string]Transform{
	DefaultTransform: Upshift,
	"wrap":           Wrap,
}

// TransformByName looks up a Transform by policy name.
func TransformByName(name string) (Transform, error) {
	if t, ok := Transforms[name]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("unknown transform policy %q", name)
}
