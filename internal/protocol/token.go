package protocol

import (
	"fmt"
	"sort"
	"time"

	"asset-inventory-backend/internal/apperr"

	"github.com/golang-jwt/jwt/v5"
)

// TokenLine is one reviewed (instance, quantity) pair.
type TokenLine struct {
	InstanceID uint `json:"i"`
	Quantity   int  `json:"q"`
}

type confirmationClaims struct {
	DocumentNumber string      `json:"doc"`
	Lines          []TokenLine `json:"lines"`
	jwt.RegisteredClaims
}

// Signer issues and checks the confirmation token that ties a reviewed protocol
// to the write-off performed afterwards.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *Signer) Sign(documentNumber string, lines map[uint]int) (string, error) {
	now := s.now()
	claims := &confirmationClaims{
		DocumentNumber: documentNumber,
		Lines:          sortedLines(lines),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "write-off-protocol",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// VerifyConfirmation fails unless token is valid and lists exactly lines.
func (s *Signer) VerifyConfirmation(tokenStr string, lines map[uint]int) error {
	claims := &confirmationClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return apperr.Validation("confirmationToken", "confirmation token is invalid or expired")
	}

	want := sortedLines(lines)
	if len(want) != len(claims.Lines) {
		return apperr.Validation("confirmationToken",
			"write-off lists %d instances but the protocol was generated for %d", len(want), len(claims.Lines))
	}
	for i, l := range claims.Lines {
		if want[i].InstanceID != l.InstanceID {
			return apperr.Validation("confirmationToken",
				"instance %d is not part of the confirmed protocol", want[i].InstanceID)
		}
		if want[i].Quantity != l.Quantity {
			return apperr.Validation("confirmationToken",
				"instance %d: write-off quantity %d does not match protocol quantity %d",
				want[i].InstanceID, want[i].Quantity, l.Quantity)
		}
	}
	return nil
}

func sortedLines(lines map[uint]int) []TokenLine {
	out := make([]TokenLine, 0, len(lines))
	for id, q := range lines {
		out = append(out, TokenLine{InstanceID: id, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InstanceID < out[j].InstanceID })
	return out
}
