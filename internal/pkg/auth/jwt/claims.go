package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the claims carried by a RelayChat bearer token.
type Payload struct {
	// StandardClaims carries expiry, issue time and issuer.
	jwt.StandardClaims

	// Username is the verified identity the relay admits the connection under.
	Username string `json:"username"`
}
