package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/apoclyps/cr8s/internal/core/ports"
)

// CrateHandler handles HTTP requests for the crates resource.
type CrateHandler struct {
	repo ports.CrateRepository
}

func NewCrateHandler(repo ports.CrateRepository) *CrateHandler {
	return &CrateHandler{repo: repo}
}

type crateRequest struct {
	RustaceanID int64   `json:"rustacean_id" validate:"required"`
	Code        string  `json:"code"         validate:"required"`
	Name        string  `json:"name"         validate:"required"`
	Version     string  `json:"version"      validate:"required"`
	Description *string `json:"description"`
}

func (r crateRequest) toInput() ports.NewCrate {
	return ports.NewCrate{
		RustaceanID: r.RustaceanID,
		Code:        r.Code,
		Name:        r.Name,
		Version:     r.Version,
		Description: r.Description,
	}
}

// List returns the newest crates.
//
// @Summary      List crates
// @Tags         crates
// @Produce      json
// @Success      200  {array}  domain.Crate
// @Router       /crates [get]
func (h *CrateHandler) List(c echo.Context) error {
	crates, err := h.repo.FindMultiple(c.Request().Context(), listLimit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, crates)
}

// View returns a single crate by id.
//
// @Summary      View crate
// @Tags         crates
// @Produce      json
// @Success      200  {object}  domain.Crate
// @Failure      404  {object}  map[string]string
// @Router       /crates/{id} [get]
func (h *CrateHandler) View(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	crate, err := h.repo.Find(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, crate)
}

// Create stores a new crate.
//
// @Summary      Create crate
// @Tags         crates
// @Accept       json
// @Produce      json
// @Success      201  {object}  domain.Crate
// @Router       /crates [post]
func (h *CrateHandler) Create(c echo.Context) error {
	var req crateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	crate, err := h.repo.Create(c.Request().Context(), req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, crate)
}

// Update overwrites a crate's editable fields.
//
// @Summary      Update crate
// @Tags         crates
// @Accept       json
// @Produce      json
// @Success      200  {object}  domain.Crate
// @Failure      404  {object}  map[string]string
// @Router       /crates/{id} [put]
func (h *CrateHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req crateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	crate, err := h.repo.Save(c.Request().Context(), id, req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, crate)
}

// Delete removes a crate.
//
// @Summary      Delete crate
// @Tags         crates
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /crates/{id} [delete]
func (h *CrateHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.repo.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
