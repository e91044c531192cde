package api

import (
	"net/http"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/service/accounts"
	"github.com/gin-gonic/gin"
)

// ProfileHandler lets users edit their own profile.
type ProfileHandler struct {
	accounts accounts.AccountUseCase
}

type profileRequest struct {
	tokenRequest
	FirstName *string `json:"first_name" form:"first_name"`
	LastName  *string `json:"last_name" form:"last_name"`
}

func NewProfileHandler(accountSvc accounts.AccountUseCase) *ProfileHandler {
	return &ProfileHandler{accounts: accountSvc}
}

func (h *ProfileHandler) Register(router *gin.RouterGroup) {
	router.Any("/customers/:id/update", h.update)
}

func (h *ProfileHandler) update(c *gin.Context) {
	var req profileRequest
	if err := bind(c, &req); err != nil {
		writeError(c, err)
		return
	}
	id, err := pathID(c)
	if err != nil {
		writeError(c, err)
		return
	}

	updated, err := h.accounts.UpdateCustomer(c.Request.Context(), req.credentials(c), id, domain.ProfilePatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
