package jwt

// Verifier turns bearer tokens into verified usernames.
// It satisfies relay.TokenVerifier.
type Verifier struct {
	secretKey string
}

// NewVerifier returns a Verifier for tokens signed with secretKey.
func NewVerifier(secretKey string) *Verifier {
	return &Verifier{secretKey: secretKey}
}

// Verify returns the username claim of a valid token.
func (v *Verifier) Verify(token string) (string, error) {
	payload, err := ParseToken(token, v.secretKey)
	if err != nil {
		return "", err
	}

	if payload.Username == "" {
		return "", ErrEmptyUsername
	}

	return payload.Username, nil
}
