package models

import "github.com/golang-jwt/jwt/v5"

// TokenRequest is the sign-in payload. Password is consulted only when the
// stored user has a password hash; social sign-in records have none.
type TokenRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// TokenResponse returns the issued bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}

// TokenClaims is the identity claim embedded in access tokens. The email is
// the identity; role checks always go back to the user store.
type TokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}
