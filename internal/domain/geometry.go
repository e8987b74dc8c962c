package domain

// Geometry is the size of a rendering surface, compared by value.
type Geometry struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Placement is where a participant's video is drawn inside a surface.
type Placement struct {
	Geometry
	X int `json:"x"`
	Y int `json:"y"`
}

// DefaultGeometry matches the initial video canvas before the first resize.
var DefaultGeometry = Geometry{Width: 800, Height: 600}

func (g Geometry) IsZero() bool { return g.Width == 0 && g.Height == 0 }

// At returns a placement of g anchored at (x, y).
func (g Geometry) At(x, y int) Placement {
	return Placement{Geometry: g, X: x, Y: y}
}
