package handler

type createVehicleRequest struct {
	Name  string  `json:"name"  validate:"required"`
	Brand string  `json:"brand" validate:"required"`
	Year  int     `json:"year"  validate:"required,gt=1900"`
	Price float64 `json:"price" validate:"required,gt=0"`
}

type patchVehicleRequest struct {
	Name  *string  `json:"name,omitempty"`
	Brand *string  `json:"brand,omitempty"`
	Year  *int     `json:"year,omitempty"  validate:"omitempty,gt=1900"`
	Price *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
}
