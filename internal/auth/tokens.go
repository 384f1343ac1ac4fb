package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/mailib/mailib-server/internal/id"
)

// ErrInvalidToken is returned for tokens that fail decryption or claim rules.
var ErrInvalidToken = errors.New("invalid token")

// TokenOptions configures a TokenService.
type TokenOptions struct {
	Issuer         string
	Audience       string
	AccessDuration time.Duration
}

// TokenService verifies bearer tokens issued by the account service and
// mints development tokens for the operator CLI.
type TokenService struct {
	symmetricKey   paseto.V4SymmetricKey
	issuer         string
	audience       string
	accessDuration time.Duration
	now            func() time.Time
}

// NewTokenService creates a token service from a raw 32 byte key.
func NewTokenService(key []byte, opts TokenOptions) (*TokenService, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d bytes, got %d", keyLength, len(key))
	}

	symmetric, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	return &TokenService{
		symmetricKey:   symmetric,
		issuer:         opts.Issuer,
		audience:       opts.Audience,
		accessDuration: opts.AccessDuration,
		now:            time.Now,
	}, nil
}

// IssueAccessToken creates a PASETO v4.local access token for userID.
func (s *TokenService) IssueAccessToken(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("user id is required")
	}
	now := s.now()

	token := paseto.NewToken()
	token.SetIssuer(s.issuer)
	token.SetSubject(userID)
	token.SetAudience(s.audience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(s.accessDuration))

	tokenID, err := id.Generate("token")
	if err != nil {
		return "", fmt.Errorf("generate token ID: %w", err)
	}
	token.SetJti(tokenID)

	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("user_id", userID)

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

// VerifyAccessToken decrypts a v4.local token and checks issuer, audience
// and validity window. The acting user is the user_id claim, falling back
// to the subject.
func (s *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.ForAudience(s.audience))
	parser.AddRule(paseto.IssuedBy(s.issuer))
	parser.AddRule(paseto.ValidAt(s.now()))

	token, err := parser.ParseV4Local(s.symmetricKey, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	var claims AccessClaims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("%w: parse claims: %w", ErrInvalidToken, err)
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: no user in claims", ErrInvalidToken)
	}

	return &claims, nil
}

// AccessTokenDuration returns the configured access token lifetime.
func (s *TokenService) AccessTokenDuration() time.Duration {
	return s.accessDuration
}
