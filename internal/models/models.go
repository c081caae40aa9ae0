package models

// CafeFields holds every mutable attribute of a café.
// Empty strings and nil ratings mean "unset".
type CafeFields struct {
	Name          string   `db:"name"`
	City          string   `db:"city"`
	Website       string   `db:"website"`
	MapLocation   string   `db:"map_location"`
	Description   string   `db:"description"`
	OverallRating *float64 `db:"overall_rating"`
	Coffee        *int     `db:"coffee"`
	Tea           *int     `db:"tea"`
	Wifi          *int     `db:"wifi"`
	Cake          *int     `db:"cake"`
	Work          *int     `db:"work"`
	Breakfast     *int     `db:"breakfast"`
	Review        string   `db:"review"`
}

// Cafe is a stored café record. ID is assigned by the store on creation.
type Cafe struct {
	ID int64 `db:"id"`
	CafeFields
}

// Facet pairs a facet rating with its display label.
type Facet struct {
	Label  string
	Rating *int
}

// Facets returns the six sub-ratings in display order.
func (f CafeFields) Facets() []Facet {
	return []Facet{
		{"Coffee", f.Coffee},
		{"Tea", f.Tea},
		{"Wifi", f.Wifi},
		{"Cake", f.Cake},
		{"Work", f.Work},
		{"Breakfast", f.Breakfast},
	}
}
