package domain

// Vehicle is a fleet asset. Two vehicles are considered duplicates when they
// share name, brand, and year.
type Vehicle struct {
	ID         string  `json:"id" bson:"_id"`
	Name       string  `json:"name" bson:"name"`
	Brand      string  `json:"brand" bson:"brand"`
	Year       int     `json:"year" bson:"year"`
	Price      float64 `json:"price" bson:"price"`
	Timestamps `bson:",inline"`
}
