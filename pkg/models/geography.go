package models

// Neighborhood is a fixed district of the delivery network.
type Neighborhood struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// PickupPoint is a local business where parcels are staged.
type PickupPoint struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	Neighborhood string  `json:"neighborhood"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	Hours        string  `json:"hours"`
}

// Partner is a retail partner whose purchases arrive at pickup points.
type Partner struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Logo  string `json:"logo"`
	Color string `json:"color"`
}
