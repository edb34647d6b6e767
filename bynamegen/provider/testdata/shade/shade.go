// Package shade declares a string enum whose text form is not its member names.
package shade

import "fmt"

type Shade string

const (
	Light Shade = "light"
	Dark  Shade = "dark"
	Pale        = Light
	dim   Shade = "dim"
)

func (s *Shade) UnmarshalText(text []byte) error {
	switch v := Shade(text); v {
	case Light, Dark, dim:
		*s = v
		return nil
	}
	return fmt.Errorf("unknown shade %q", text)
}
