package models

import "github.com/golang-jwt/jwt/v5"

// AuthClaims are the JWT claims carried by access tokens. AccountID is the
// teacher document id created at registration; SessionID keys the redis
// session context.
type AuthClaims struct {
	AccountID string `json:"account_id"`
	SessionID string `json:"session_id"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// LoginResponse is returned by register and login.
type LoginResponse struct {
	AccessToken string  `json:"access_token"`
	ExpiresIn   int64   `json:"expires_in"`
	Teacher     Teacher `json:"teacher"`
}
