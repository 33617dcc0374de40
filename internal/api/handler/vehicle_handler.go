package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fleetops/transport-fleet/internal/core/ports"
)

type VehicleHandler struct {
	vehicles ports.VehicleService
}

func NewVehicleHandler(vehicles ports.VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles}
}

// List returns all fleet vehicles.
//
// @Summary      List vehicles
// @Tags         vehicles
// @Produce      json
// @Success      200  {array}  domain.Vehicle
// @Router       /vehicles [get]
func (h *VehicleHandler) List(c echo.Context) error {
	vehicles, err := h.vehicles.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, vehicles)
}

// Get returns one vehicle by id.
//
// @Summary      Get vehicle
// @Tags         vehicles
// @Produce      json
// @Param        id   path      string  true  "Vehicle ID"
// @Success      200  {object}  domain.Vehicle
// @Failure      404  {object}  map[string]string
// @Router       /vehicles/{id} [get]
func (h *VehicleHandler) Get(c echo.Context) error {
	vehicle, err := h.vehicles.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, vehicle)
}

// Create registers a new fleet vehicle.
//
// @Summary      Create vehicle
// @Tags         vehicles
// @Accept       json
// @Produce      json
// @Param        body  body      createVehicleRequest  true  "Vehicle details"
// @Success      201   {object}  domain.Vehicle
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /vehicles [post]
func (h *VehicleHandler) Create(c echo.Context) error {
	var req createVehicleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	vehicle, err := h.vehicles.Create(c.Request().Context(), ports.CreateVehicleInput{
		Name:  req.Name,
		Brand: req.Brand,
		Year:  req.Year,
		Price: req.Price,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, vehicle)
}

// Patch partially updates a vehicle. Omitted fields are left untouched.
//
// @Summary      Update vehicle
// @Tags         vehicles
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Vehicle ID"
// @Param        body  body      patchVehicleRequest  true  "Fields to update"
// @Success      200   {object}  domain.Vehicle
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /vehicles/{id} [patch]
func (h *VehicleHandler) Patch(c echo.Context) error {
	var req patchVehicleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	vehicle, err := h.vehicles.Update(c.Request().Context(), c.Param("id"), ports.VehiclePatch{
		Name:  req.Name,
		Brand: req.Brand,
		Year:  req.Year,
		Price: req.Price,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, vehicle)
}

// Delete removes a vehicle from the fleet.
//
// @Summary      Delete vehicle
// @Tags         vehicles
// @Param        id  path  string  true  "Vehicle ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /vehicles/{id} [delete]
func (h *VehicleHandler) Delete(c echo.Context) error {
	if err := h.vehicles.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
