package verifyresettoken

import (
	"errors"
	"net/http"
	e "resetme/internal/core/domain/errors"
	"resetme/internal/core/domain/user"
	"resetme/internal/core/services"
	service "resetme/internal/core/services/verify_reset_token"
	"resetme/internal/http/handlers/auth"
	"resetme/internal/http/handlers/response"
	"time"
)

const TOKEN_MAX_LEN = 1024

type Handler struct {
	service       services.Service[service.Input, service.Result]
	proofLifetime time.Duration
}

func New(
	service services.Service[service.Input, service.Result],
	proofLifetime time.Duration,
) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{service: service, proofLifetime: proofLifetime}
}

type Result struct {
	Status string          `json:"status"`
	Proof  user.ResetProof `json:"proof,omitempty"`
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" || len(token) > TOKEN_MAX_LEN {
		response.Render(rw, Result{Status: "failed"}, http.StatusUnprocessableEntity)
		return
	}

	result, err := h.service.Run(
		r.Context(),
		service.Input{Token: user.ResetToken(token)},
	)
	if errors.Is(err, user.ErrResetTokenExpired) {
		response.Render(rw, Result{Status: "expired"}, http.StatusGone)
		return
	}
	if errors.Is(err, user.ErrResetTokenInvalid) {
		response.Render(rw, Result{Status: "failed"}, http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		response.RenderInternalError(rw)
		return
	}

	auth.SetResetProofCookie(rw, result.Proof, h.proofLifetime)
	response.Render(rw, Result{Status: "valid", Proof: result.Proof}, http.StatusOK)
}
