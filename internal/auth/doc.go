// Package auth provides authentication and authorization for the API.
//
// It supports two authentication modes:
//   - "none": no login, every request runs as the implicit owner (user ID 0) with admin rights
//   - "local": user accounts with bcrypt passwords, signed JWT bearer tokens and cookie sessions
//
// # Configuration
//
//	AUTH_MODE=local
//	AUTH_JWT_SECRET=<random>        # falls back to the session secret
//	AUTH_JWT_EXPIRY=168h
//	AUTH_SESSION_SECRET=<random>    # auto-generated if empty
//	AUTH_SESSION_LIFETIME=24h
//	AUTH_SIGNUP_ENABLED=true
//	AUTH_MAX_LOGIN_ATTEMPTS=5
//	AUTH_LOCKOUT_DURATION=30m
//
// # Usage
//
//	service := auth.NewService(usersRepo, settingsRepo, cfg.Auth)
//	middleware := auth.NewMiddleware(service, tokens, sessions, cfg.Auth)
//	router.Use(middleware.Handler())
//	admin := router.Group("/api/admin", middleware.RequireRole(entities.UserRoleAdmin))
//
// Handlers read the caller with GetUserID, which returns DefaultUserID in "none" mode.
package auth
