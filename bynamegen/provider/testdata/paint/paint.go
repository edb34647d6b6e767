// Package paint exercises directive discovery.
package paint

import (
	tone "github.com/broady/byname/bynamegen/provider/testdata/shade"
)

const Green Color = 3

var _ tone.Shade

// Palette hosts accessors for two enums.
//
//byname:enum Color strategy=lazy
//byname:enum tone.Shade
type Palette struct{}

//byname:enum github.com/broady/byname/bynamegen/provider/testdata/shade.Shade strategy=all-once
type Tones struct{}

//byname:enum Color
type swatch int

//byname:enum Color strategy=eager
type Eager struct{}

//byname:enum Color
type Painter interface{ Paint() }

//byname:enum Color
type IntPtr *int

//byname:enum Color
type Box[T any] struct{ v T }

//byname:enum Missing
type Broken struct{}

//byname:enum example.com/nowhere.Color
type Nowhere struct{}

//byname:enum Palette
type NotEnum struct{}

//byname:enum Color bogus=1
type Bogus struct{}

func paint() {
	//byname:enum Color
	type inner struct{}
	_ = inner{}
}
