package app

import (
	"fmt"
	"net/http"
	"resetme/internal/app/deps"
	"resetme/internal/app/services"
	"resetme/internal/http/handlers/auth"
	login "resetme/internal/http/handlers/auth/log_in"
	logout "resetme/internal/http/handlers/auth/log_out"
	signup "resetme/internal/http/handlers/auth/sign_up"
	changepassword "resetme/internal/http/handlers/profile/change_password"
	requestpasswordreset "resetme/internal/http/handlers/reset/request_password_reset"
	setnewpassword "resetme/internal/http/handlers/reset/set_new_password"
	verifyresettoken "resetme/internal/http/handlers/reset/verify_reset_token"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func InitHttpServer(deps *deps.Deps, s *services.Services) *http.Server {
	isTestMode := deps.Config.IsTestMode
	minPasswordLength := deps.Config.MinPasswordLength

	authRouter := chi.NewRouter()
	authRouter.Method(http.MethodPost, "/signup", signup.New(s.SignUpWithEmail, minPasswordLength))
	authRouter.Method(http.MethodPost, "/login", login.New(s.LogInWithEmail))
	authRouter.Method(http.MethodPost, "/logout", logout.New(s.LogOut))
	authRouter.Method(
		http.MethodPost,
		"/password_reset/request",
		requestpasswordreset.New(s.RequestPasswordReset, isTestMode),
	)
	authRouter.Method(
		http.MethodGet,
		"/password_reset/verify",
		verifyresettoken.New(s.VerifyResetToken, deps.Config.ResetProofLifetime),
	)
	authRouter.Method(
		http.MethodPost,
		"/password_reset",
		setnewpassword.New(s.SetNewPassword, minPasswordLength),
	)

	profileRouter := chi.NewRouter()
	profileRouter.Use(auth.SetAuthTokenToContext)
	profileRouter.Method(
		http.MethodPut,
		"/password",
		changepassword.New(s.ChangePassword, minPasswordLength),
	)

	router := chi.NewRouter()
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))
	router.Mount("/auth", authRouter)
	router.Mount("/profile", profileRouter)

	address := fmt.Sprintf("0.0.0.0:%d", deps.Config.Port)

	return &http.Server{
		Handler:           router,
		Addr:              address,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      5 * time.Second,
		IdleTimeout:       5 * time.Second,
	}
}
