package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/apoclyps/cr8s/internal/core/ports"
)

// listLimit caps resource listings.
const listLimit = 100

// RustaceanHandler handles HTTP requests for the rustaceans resource.
type RustaceanHandler struct {
	repo ports.RustaceanRepository
}

func NewRustaceanHandler(repo ports.RustaceanRepository) *RustaceanHandler {
	return &RustaceanHandler{repo: repo}
}

type rustaceanRequest struct {
	Name  string `json:"name"  validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// List returns the newest rustaceans.
//
// @Summary      List rustaceans
// @Tags         rustaceans
// @Produce      json
// @Success      200  {array}  domain.Rustacean
// @Router       /rustaceans [get]
func (h *RustaceanHandler) List(c echo.Context) error {
	rustaceans, err := h.repo.FindMultiple(c.Request().Context(), listLimit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rustaceans)
}

// View returns a single rustacean by id.
//
// @Summary      View rustacean
// @Tags         rustaceans
// @Produce      json
// @Success      200  {object}  domain.Rustacean
// @Failure      404  {object}  map[string]string
// @Router       /rustaceans/{id} [get]
func (h *RustaceanHandler) View(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	rustacean, err := h.repo.Find(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rustacean)
}

// Create stores a new rustacean.
//
// @Summary      Create rustacean
// @Tags         rustaceans
// @Accept       json
// @Produce      json
// @Success      201  {object}  domain.Rustacean
// @Router       /rustaceans [post]
func (h *RustaceanHandler) Create(c echo.Context) error {
	var req rustaceanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rustacean, err := h.repo.Create(c.Request().Context(), ports.NewRustacean{Name: req.Name, Email: req.Email})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, rustacean)
}

// Update overwrites a rustacean's editable fields.
//
// @Summary      Update rustacean
// @Tags         rustaceans
// @Accept       json
// @Produce      json
// @Success      200  {object}  domain.Rustacean
// @Failure      404  {object}  map[string]string
// @Router       /rustaceans/{id} [put]
func (h *RustaceanHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req rustaceanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rustacean, err := h.repo.Save(c.Request().Context(), id, ports.NewRustacean{Name: req.Name, Email: req.Email})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rustacean)
}

// Delete removes a rustacean.
//
// @Summary      Delete rustacean
// @Tags         rustaceans
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /rustaceans/{id} [delete]
func (h *RustaceanHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.repo.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
