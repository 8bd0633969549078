package session

import (
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	errs "github.com/techcorp/partsquote/internal/errors"
	"github.com/techcorp/partsquote/internal/utils"
)

// AccessClaims is the subset of the access-token payload the console needs.
// The token is parsed without signature verification: the client treats it as
// an opaque bearer credential and only reads the claims the server put there.
type AccessClaims struct {
	Subject   string
	UserID    string
	Roles     []string
	ExpiresAt time.Time
}

// DecodeAccessClaims extracts claims from a raw access token. A token that
// cannot be parsed is fatal for the session and logs the user out.
func DecodeAccessClaims(rawToken string) (*AccessClaims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, errs.ErrMalformedToken
	}

	token, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return nil, errs.Wrapf(errs.ErrMalformedToken, "parse: %v", err)
	}

	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errs.Wrapf(errs.ErrMalformedToken, "extract claims")
	}

	sub, _ := claims["sub"].(string)
	userID, _ := claims["userId"].(string)
	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, errs.Wrapf(errs.ErrMalformedToken, "missing exp claim")
	}

	var roles []string
	if claimRoles, ok := claims["roles"].([]any); ok {
		roles = utils.ToStringSlice(claimRoles)
	}

	return &AccessClaims{
		Subject:   sub,
		UserID:    userID,
		Roles:     roles,
		ExpiresAt: time.Unix(int64(exp), 0),
	}, nil
}

// UserFromClaims builds the session user record: the display name is the
// local part of the subject email and the role is the first granted role,
// defaulting to RoleUser.
func UserFromClaims(claims *AccessClaims) (*User, error) {
	if claims == nil {
		return nil, errors.New("nil claims")
	}

	id := claims.UserID
	if id == "" {
		id = "unknown"
	}

	role := RoleUser
	if len(claims.Roles) > 0 {
		if r := Role(claims.Roles[0]); r.Valid() {
			role = r
		}
	}

	name := claims.Subject
	if at := strings.Index(name, "@"); at > 0 {
		name = name[:at]
	}

	return &User{
		ID:    id,
		Name:  name,
		Email: claims.Subject,
		Role:  role,
	}, nil
}
