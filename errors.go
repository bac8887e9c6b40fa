package simplenn

import (
	. "github.com/stevegt/goadapt"
)

// ConfigError reports an invalid network configuration.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return Spf("simplenn: invalid %s: %s", e.Field, e.Msg)
}

// ShapeError reports a vector whose length does not match the layer
// it is applied to.  Case is the index of the offending training
// case, or -1 when the vector did not come from a training set.
type ShapeError struct {
	What string
	Want int
	Got  int
	Case int
}

func (e *ShapeError) Error() string {
	if e.Case < 0 {
		return Spf("simplenn: %s length mismatch: want %d, got %d", e.What, e.Want, e.Got)
	}
	return Spf("simplenn: training case %d: %s length mismatch: want %d, got %d", e.Case, e.What, e.Want, e.Got)
}
