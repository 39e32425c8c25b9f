package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid session token")

// Cookies carries the session id in an HS256-signed token so clients cannot
// pick arbitrary ids.
type Cookies struct {
	Name   string
	TTL    time.Duration
	Secure bool
	secret []byte
	now    func() time.Time
}

func NewCookies(name, secret string, ttl time.Duration, secure bool) *Cookies {
	return &Cookies{
		Name:   name,
		TTL:    ttl,
		Secure: secure,
		secret: []byte(secret),
		now:    time.Now,
	}
}

func (c *Cookies) Sign(sessionID string) (string, error) {
	if sessionID == "" {
		return "", errors.New("empty session id passed to Sign")
	}

	now := c.now()
	claims := jwt.MapClaims{
		"sid": sessionID,
		"iat": now.Unix(),
		"exp": now.Add(c.TTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify returns the session id carried by a token.
func (c *Cookies) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", ErrInvalidToken
	}
	return sid, nil
}

// Read extracts the session id from the request cookie, if valid.
func (c *Cookies) Read(ctx *gin.Context) (string, bool) {
	raw, err := ctx.Cookie(c.Name)
	if err != nil || raw == "" {
		return "", false
	}
	sid, err := c.Verify(raw)
	if err != nil {
		return "", false
	}
	return sid, true
}

// Write sets the cookie for sessionID. Must run before the body is written.
func (c *Cookies) Write(ctx *gin.Context, sessionID string) error {
	token, err := c.Sign(sessionID)
	if err != nil {
		return err
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.Name, token, int(c.TTL.Seconds()), "/", "", c.Secure, true)
	return nil
}
