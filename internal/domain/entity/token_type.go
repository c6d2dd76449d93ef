package entity

// TokenType is the closed set of token kinds the service signs and verifies.
// Each type maps to a fixed algorithm, secret material and lifetime; the codec
// selects all three through this key, never by inspecting the token itself.
type TokenType string

const (
	// TokenTypeAccess is the short-lived, asymmetrically signed credential for ordinary API calls.
	TokenTypeAccess TokenType = "access"
	// TokenTypeRefresh is the long-lived, symmetrically signed credential used to mint new access tokens.
	TokenTypeRefresh TokenType = "refresh"
	// TokenTypeConfirmation is the single-use email confirmation credential.
	TokenTypeConfirmation TokenType = "confirmation"
	// TokenTypeResetPassword is the single-use password reset credential.
	TokenTypeResetPassword TokenType = "reset_password"
)

// String returns the string representation of the TokenType.
func (t TokenType) String() string {
	return string(t)
}

// IsValid checks if the TokenType is a valid value.
func (t TokenType) IsValid() bool {
	switch t {
	case TokenTypeAccess, TokenTypeRefresh, TokenTypeConfirmation, TokenTypeResetPassword:
		return true
	default:
		return false
	}
}

// CarriesVersion reports whether tokens of this type embed the credential
// version. Access tokens do not: they stay stateless and verifiable without a
// database read, which is why they survive a password change until expiry.
func (t TokenType) CarriesVersion() bool {
	return t != TokenTypeAccess
}
