// Package auth issues and verifies the signed credentials used by the API
// and hashes account passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Kind tags what a signed token may be used for.
type Kind int

const (
	KindAccess Kind = iota + 1
	KindVerification
)

func (k Kind) String() string {
	switch k {
	case KindAccess:
		return "access"
	case KindVerification:
		return "verify"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// typeVerify is the claim value marking a verification token. Access tokens
// carry no type claim.
const typeVerify = "verify"

// Claims is the JWT payload: registered claims plus the account id and an
// optional type discriminator.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Type   string `json:"type,omitempty"`
}

// Token is a verified credential. Callers must check Kind before using
// AccountID.
type Token struct {
	Kind      Kind
	AccountID string
	ExpiresAt time.Time
}

// Codec signs and verifies HS256 tokens with a secret fixed at construction.
type Codec struct {
	secret          []byte
	accessTTL       time.Duration
	verificationTTL time.Duration
	now             func() time.Time
}

// NewCodec returns a Codec. An empty secret is rejected.
func NewCodec(secret []byte, accessTTL, verificationTTL time.Duration) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: empty signing secret")
	}
	return &Codec{
		secret:          secret,
		accessTTL:       accessTTL,
		verificationTTL: verificationTTL,
		now:             time.Now,
	}, nil
}

// WithClock replaces the time source, for tests.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

func (c *Codec) IssueAccess(accountID string) (string, error) {
	return c.sign(accountID, "", c.accessTTL)
}

func (c *Codec) IssueVerification(accountID string) (string, error) {
	return c.sign(accountID, typeVerify, c.verificationTTL)
}

func (c *Codec) sign(accountID, typ string, ttl time.Duration) (string, error) {
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: accountID,
		Type:   typ,
	})

	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}

// Verify checks signature and expiry and decodes the token kind.
// It fails with common.ErrTokenExpired or common.ErrInvalidToken.
func (c *Codec) Verify(tokenString string) (*Token, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	var kind Kind
	switch claims.Type {
	case "":
		kind = KindAccess
	case typeVerify:
		kind = KindVerification
	default:
		return nil, common.ErrInvalidToken
	}

	return &Token{
		Kind:      kind,
		AccountID: claims.UserID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
