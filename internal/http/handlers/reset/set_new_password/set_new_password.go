package setnewpassword

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	e "resetme/internal/core/domain/errors"
	"resetme/internal/core/domain/user"
	"resetme/internal/core/services"
	service "resetme/internal/core/services/set_new_password"
	"resetme/internal/http/handlers/auth"
	"resetme/internal/http/handlers/response"

	validation "github.com/go-ozzo/ozzo-validation"
)

type Handler struct {
	service           services.Service[service.Input, service.Result]
	minPasswordLength int
}

func New(
	service services.Service[service.Input, service.Result],
	minPasswordLength int,
) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	if minPasswordLength <= 0 {
		panic("minPasswordLength must be positive")
	}
	return &Handler{service: service, minPasswordLength: minPasswordLength}
}

type Input struct {
	Password string `json:"password"`
	// Proof may come in the body for clients that do not carry the cookie.
	Proof string `json:"proof"`
}

func (i *Input) FromJSON(r io.Reader) error {
	e := json.NewDecoder(r)
	return e.Decode(i)
}

func (i Input) Validate(minPasswordLength int) error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Password, validation.Required, validation.Length(minPasswordLength, 256)),
		validation.Field(&i.Proof, validation.Length(0, 4096)),
	)
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	input := Input{}
	if err := input.FromJSON(r.Body); err != nil {
		response.RenderError(rw, "invalid request data", http.StatusBadRequest)
		return
	}
	if err := input.Validate(h.minPasswordLength); err != nil {
		response.Render(rw, err, http.StatusBadRequest)
		return
	}

	proof := user.ResetProof(input.Proof)
	if proof == "" {
		cookieProof, ok := auth.ParseResetProofCookie(r)
		if !ok {
			response.RenderError(rw, "verification proof is missing", http.StatusUnprocessableEntity)
			return
		}
		proof = cookieProof
	}

	_, err := h.service.Run(
		r.Context(),
		service.Input{
			Proof:       proof,
			NewPassword: user.RawPassword(input.Password),
		},
	)
	if errors.Is(err, user.ErrResetTokenExpired) {
		response.RenderError(rw, "token expired", http.StatusUnprocessableEntity)
		return
	}
	if errors.Is(err, user.ErrResetProofInvalid) || errors.Is(err, user.ErrResetTokenInvalid) {
		response.RenderError(rw, "invalid token", http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		response.RenderInternalError(rw)
		return
	}

	auth.ClearResetProofCookie(rw)
	response.Render(rw, struct{}{}, http.StatusOK)
}
