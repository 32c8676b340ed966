package actions

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ordena-app/ordena-backend/pkg/enums"
	pkgerrors "github.com/ordena-app/ordena-backend/pkg/errors"
)

const legacySeparator = "|"

// Codec encodes and decodes courier action tokens. With a secret configured it
// issues signed JWTs with an expiry; tokens from links issued before the secret
// rollout remain decodable as plain base64 "orderID|action" pairs.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewCodec(secret string, ttl time.Duration) *Codec {
	c := &Codec{ttl: ttl, now: time.Now}
	if secret != "" {
		c.secret = []byte(secret)
	}
	return c
}

type actionClaims struct {
	Action string `json:"act"`
	jwt.RegisteredClaims
}

// Encode builds a token carrying the order id and the action verb.
func (c *Codec) Encode(orderID uuid.UUID, action enums.CourierAction) (string, error) {
	if !action.Valid() {
		return "", fmt.Errorf("encode action token: unknown action %q", action)
	}
	if c.secret == nil {
		return encodeLegacy(orderID, action), nil
	}

	now := c.now()
	claims := actionClaims{
		Action: string(action),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   orderID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Decode returns the order id and action carried by the token. Malformed,
// tampered or expired tokens yield a VALIDATION_ERROR.
func (c *Codec) Decode(token string) (uuid.UUID, enums.CourierAction, error) {
	if strings.TrimSpace(token) == "" {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeValidation, "empty action token")
	}

	if c.secret != nil {
		if orderID, action, err := c.decodeSigned(token); err == nil {
			return orderID, action, nil
		} else if !looksLegacy(token) {
			return uuid.Nil, "", err
		}
	}
	return decodeLegacy(token)
}

func (c *Codec) decodeSigned(token string) (uuid.UUID, enums.CourierAction, error) {
	var claims actionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid action token")
	}

	orderID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid action token subject")
	}
	action := enums.CourierAction(claims.Action)
	if !action.Valid() {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid action token verb")
	}
	return orderID, action, nil
}

func encodeLegacy(orderID uuid.UUID, action enums.CourierAction) string {
	payload := orderID.String() + legacySeparator + string(action)
	return base64.URLEncoding.EncodeToString([]byte(payload))
}

// looksLegacy distinguishes legacy tokens from JWTs: JWTs always carry two
// dots, base64 payloads never do.
func looksLegacy(token string) bool {
	return strings.Count(token, ".") != 2
}

func decodeLegacy(token string) (uuid.UUID, enums.CourierAction, error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		raw, err = base64.RawURLEncoding.DecodeString(token)
	}
	if err != nil {
		raw, err = base64.StdEncoding.DecodeString(token)
	}
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed action token")
	}

	parts := strings.SplitN(string(raw), legacySeparator, 2)
	if len(parts) != 2 {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeValidation, "malformed action token payload")
	}
	orderID, err := uuid.Parse(parts[0])
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id in action token")
	}
	action := enums.CourierAction(parts[1])
	if !action.Valid() {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeValidation, "unknown action in token")
	}
	return orderID, action, nil
}

// ActionURL builds the dashboard link the courier mail embeds.
func ActionURL(dashboardURL, token string, action enums.CourierAction) string {
	return fmt.Sprintf("%s?action=%s&token=%s", dashboardURL, action, token)
}
