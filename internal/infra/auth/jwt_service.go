// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"carpool/config"
	"carpool/internal/domain/entity"
	domainerrors "carpool/internal/domain/errors"
	"carpool/internal/domain/service"
)

// tokenSpec fixes algorithm, key material and lifetime for one token type.
// The table is built once at boot; verification never branches on token content.
type tokenSpec struct {
	method    jwt.SigningMethod
	signKey   any
	verifyKey any
	ttl       time.Duration
}

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
type jwtService struct {
	issuer          string
	audience        string
	audiencePattern *regexp.Regexp // non-nil when the configured domain is a regexp pattern
	specs           map[entity.TokenType]tokenSpec
}

// accessTokenClaims is the wire form of an access token payload.
// Deliberately version-free so verification stays a pure CPU-bound check.
type accessTokenClaims struct {
	ID    uuid.UUID `json:"id"`
	Roles []string  `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// refreshTokenClaims is the wire form of a refresh token payload.
type refreshTokenClaims struct {
	ID      uuid.UUID `json:"id"`
	Version int       `json:"version"`
	TokenID uuid.UUID `json:"tokenId"`
	jwt.RegisteredClaims
}

// emailTokenClaims is the wire form of confirmation and reset-password payloads.
type emailTokenClaims struct {
	ID      uuid.UUID `json:"id"`
	Version int       `json:"version"`
	jwt.RegisteredClaims
}

// NewJWTService is the constructor for jwtService.
// It parses the RSA key pair, builds the per-type spec table and compiles the
// audience pattern. Configuration errors surface here, not at request time.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	tokenCfg := cfg.Token
	if tokenCfg == nil {
		return nil, errors.New("token configuration must be provided")
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(tokenCfg.Access.PrivateKeyPEM))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse access token private key")
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM([]byte(tokenCfg.Access.PublicKeyPEM))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse access token public key")
	}

	svc := &jwtService{
		issuer:   tokenCfg.AppID,
		audience: tokenCfg.Domain,
		specs: map[entity.TokenType]tokenSpec{
			entity.TokenTypeAccess: {
				method:    jwt.SigningMethodRS256,
				signKey:   privateKey,
				verifyKey: publicKey,
				ttl:       tokenCfg.Access.TTL,
			},
			entity.TokenTypeRefresh: {
				method:    jwt.SigningMethodHS256,
				signKey:   []byte(tokenCfg.Refresh.Secret),
				verifyKey: []byte(tokenCfg.Refresh.Secret),
				ttl:       tokenCfg.Refresh.TTL,
			},
			entity.TokenTypeConfirmation: {
				method:    jwt.SigningMethodHS256,
				signKey:   []byte(tokenCfg.Confirmation.Secret),
				verifyKey: []byte(tokenCfg.Confirmation.Secret),
				ttl:       tokenCfg.Confirmation.TTL,
			},
			entity.TokenTypeResetPassword: {
				method:    jwt.SigningMethodHS256,
				signKey:   []byte(tokenCfg.ResetPassword.Secret),
				verifyKey: []byte(tokenCfg.ResetPassword.Secret),
				ttl:       tokenCfg.ResetPassword.TTL,
			},
		},
	}

	for tokenType, spec := range svc.specs {
		if spec.ttl <= 0 {
			return nil, errors.Errorf("token lifetime for %s must be positive", tokenType)
		}
	}

	// A domain starting with '^' is treated as a regexp pattern, e.g.
	// ^([a-z0-9-]+\.)?carpool\.tw$ to accept every product subdomain.
	if strings.HasPrefix(tokenCfg.Domain, "^") {
		pattern, err := regexp.Compile(tokenCfg.Domain)
		if err != nil {
			return nil, errors.Wrap(err, "failed to compile audience pattern")
		}
		svc.audiencePattern = pattern
	}

	return svc, nil
}

// IssueAccessToken signs a short-lived RS256 access token for the user.
func (s *jwtService) IssueAccessToken(user *entity.User, audienceOverride string) (string, error) {
	audience := s.audience
	if audienceOverride != "" {
		audience = audienceOverride
	}

	claims := &accessTokenClaims{
		ID:               user.ID,
		Roles:            user.Roles().ToStrings(),
		RegisteredClaims: s.registeredClaims(user.Email, audience, entity.TokenTypeAccess),
	}

	return s.sign(entity.TokenTypeAccess, claims)
}

// IssueRefreshToken signs an HS256 refresh token carrying the credential version
// and a per-session tokenID. Passing uuid.Nil mints a fresh tokenID.
func (s *jwtService) IssueRefreshToken(user *entity.User, tokenID uuid.UUID) (string, uuid.UUID, error) {
	if user.Credentials == nil {
		return "", uuid.Nil, errors.New("user has no credentials")
	}
	if tokenID == uuid.Nil {
		tokenID = uuid.New()
	}

	claims := &refreshTokenClaims{
		ID:               user.ID,
		Version:          user.Credentials.Version,
		TokenID:          tokenID,
		RegisteredClaims: s.registeredClaims(user.Email, s.audience, entity.TokenTypeRefresh),
	}

	signed, err := s.sign(entity.TokenTypeRefresh, claims)
	if err != nil {
		return "", uuid.Nil, err
	}

	return signed, tokenID, nil
}

// IssueEmailToken signs a confirmation or reset-password token.
func (s *jwtService) IssueEmailToken(user *entity.User, tokenType entity.TokenType) (string, error) {
	if tokenType != entity.TokenTypeConfirmation && tokenType != entity.TokenTypeResetPassword {
		return "", errors.Errorf("token type %s is not an email token", tokenType)
	}
	if user.Credentials == nil {
		return "", errors.New("user has no credentials")
	}

	claims := &emailTokenClaims{
		ID:               user.ID,
		Version:          user.Credentials.Version,
		RegisteredClaims: s.registeredClaims(user.Email, s.audience, tokenType),
	}

	return s.sign(tokenType, claims)
}

// VerifyAccessToken verifies an access token against the configured public key.
func (s *jwtService) VerifyAccessToken(tokenString string) (*service.AccessClaims, error) {
	claims := &accessTokenClaims{}
	if err := s.verify(tokenString, entity.TokenTypeAccess, claims); err != nil {
		return nil, err
	}

	return &service.AccessClaims{
		UserID: claims.ID,
		Email:  claims.Subject,
		Roles:  claims.Roles,
	}, nil
}

// VerifyRefreshToken verifies a refresh token against the refresh secret.
// The embedded Version is returned untouched; the caller compares it with the
// user's current credential version and rejects on mismatch.
func (s *jwtService) VerifyRefreshToken(tokenString string) (*service.RefreshClaims, error) {
	claims := &refreshTokenClaims{}
	if err := s.verify(tokenString, entity.TokenTypeRefresh, claims); err != nil {
		return nil, err
	}

	return &service.RefreshClaims{
		UserID:  claims.ID,
		Version: claims.Version,
		TokenID: claims.TokenID,
	}, nil
}

// VerifyEmailToken verifies a confirmation or reset-password token with the type's own secret.
func (s *jwtService) VerifyEmailToken(tokenString string, tokenType entity.TokenType) (*service.EmailClaims, error) {
	if tokenType != entity.TokenTypeConfirmation && tokenType != entity.TokenTypeResetPassword {
		return nil, errors.Errorf("token type %s is not an email token", tokenType)
	}

	claims := &emailTokenClaims{}
	if err := s.verify(tokenString, tokenType, claims); err != nil {
		return nil, err
	}

	return &service.EmailClaims{
		UserID:  claims.ID,
		Version: claims.Version,
	}, nil
}

// HashToken returns the SHA-256 hex digest of a raw token string.
func (s *jwtService) HashToken(tokenString string) string {
	digest := sha256.Sum256([]byte(tokenString))

	return hex.EncodeToString(digest[:])
}

// TokenTTL returns the configured lifetime for a token type.
func (s *jwtService) TokenTTL(tokenType entity.TokenType) time.Duration {
	return s.specs[tokenType].ttl
}

func (s *jwtService) registeredClaims(subject, audience string, tokenType entity.TokenType) jwt.RegisteredClaims {
	now := time.Now()

	return jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   subject,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.specs[tokenType].ttl)),
	}
}

// sign produces the compact token string. Signing is deterministic for fixed
// inputs, so failures are never retried; they surface as internal errors.
func (s *jwtService) sign(tokenType entity.TokenType, claims jwt.Claims) (string, error) {
	spec := s.specs[tokenType]

	signed, err := jwt.NewWithClaims(spec.method, claims).SignedString(spec.signKey)
	if err != nil {
		return "", errors.Wrapf(domainerrors.ErrTokenSigningFailed, "failed to sign %s token: %v", tokenType, err)
	}

	return signed, nil
}

// verify parses and validates the token against the expected type's spec.
// Signature, algorithm, issuer and expiry are enforced by the parser; audience
// and max-age are enforced here. Underlying failures are translated to the
// fixed domain errors so internal detail never leaks to callers.
func (s *jwtService) verify(tokenString string, tokenType entity.TokenType, claims jwt.Claims) error {
	spec := s.specs[tokenType]

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{spec.method.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)

	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return spec.verifyKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domainerrors.ErrTokenExpired.WrapMessage("token past its expiry")
		}

		return domainerrors.ErrTokenMalformed.WrapMessage(err.Error())
	}
	if !token.Valid {
		return domainerrors.ErrTokenMalformed.WrapMessage("token failed validation")
	}

	if err := s.checkAudience(claims); err != nil {
		return err
	}

	// Defense in depth beyond the exp claim: a token whose issue time plus the
	// configured lifetime has passed is expired even if its exp claim says otherwise.
	issuedAt, err := claims.GetIssuedAt()
	if err != nil || issuedAt == nil {
		return domainerrors.ErrTokenMalformed.WrapMessage("missing iat claim")
	}
	if time.Now().After(issuedAt.Add(spec.ttl)) {
		return domainerrors.ErrTokenExpired.WrapMessage("token older than its type's lifetime")
	}

	return nil
}

// checkAudience matches the token's audience claims against the configured
// domain, by exact value or by regexp pattern.
func (s *jwtService) checkAudience(claims jwt.Claims) error {
	audiences, err := claims.GetAudience()
	if err != nil || len(audiences) == 0 {
		return domainerrors.ErrTokenMalformed.WrapMessage("missing aud claim")
	}

	for _, audience := range audiences {
		if s.audiencePattern != nil {
			if s.audiencePattern.MatchString(audience) {
				return nil
			}

			continue
		}
		if audience == s.audience {
			return nil
		}
	}

	return domainerrors.ErrTokenMalformed.WrapMessage("audience mismatch")
}
