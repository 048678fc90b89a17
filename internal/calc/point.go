package calc

// Point is one strain reading at a position along the sensor.
type Point struct {
	Strain   float64 `json:"strain"`
	Position float64 `json:"position"`
}
