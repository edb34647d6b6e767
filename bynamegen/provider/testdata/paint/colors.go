package paint

type Color int

const (
	Red     Color = 1
	Crimson       = Red
	Blue    Color = 2
	Navy    Color = 2
)

const violet Color = 5

// NotAColor has the right value but the wrong type.
const NotAColor = 3
