package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/psyclinic/clinic-api/internal/core/domain"
	"github.com/psyclinic/clinic-api/internal/core/ports"
)

type UserHandler struct {
	identities ports.IdentityService
}

func NewUserHandler(identities ports.IdentityService) *UserHandler {
	return &UserHandler{identities: identities}
}

// UpdateRole handles PUT /users/:id/role.
//
// @Summary      Change a user's role
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        id    path      string       true  "User id"
// @Param        body  body      roleRequest  true  "New role"
// @Success      200   {object}  profileResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /users/{id}/role [put]
func (h *UserHandler) UpdateRole(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req roleRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	user, err := h.identities.UpdateRole(c.Request().Context(), ctxActor(c), id, domain.Role(req.Role))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profileResponse{User: toProfileUser(user)})
}
