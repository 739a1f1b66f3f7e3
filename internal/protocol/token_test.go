package protocol

import (
	"testing"
	"time"

	"asset-inventory-backend/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmationTokenRoundTrip(t *testing.T) {
	s := NewSigner("secret", time.Hour)
	tok, err := s.Sign("WO-1", map[uint]int{3: 2, 1: 5})
	require.NoError(t, err)

	require.NoError(t, s.VerifyConfirmation(tok, map[uint]int{1: 5, 3: 2}))
}

func TestConfirmationTokenMismatch(t *testing.T) {
	s := NewSigner("secret", time.Hour)
	tok, err := s.Sign("WO-1", map[uint]int{1: 5, 3: 2})
	require.NoError(t, err)

	tests := map[string]map[uint]int{
		"quantity changed": {1: 4, 3: 2},
		"line added":       {1: 5, 3: 2, 7: 1},
		"line dropped":     {1: 5},
		"other instance":   {1: 5, 4: 2},
	}
	for name, lines := range tests {
		t.Run(name, func(t *testing.T) {
			err := s.VerifyConfirmation(tok, lines)
			var ae *apperr.Error
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, apperr.KindValidation, ae.Kind)
			assert.Equal(t, "confirmationToken", ae.Field)
		})
	}
}

func TestConfirmationTokenRejectsForeignAndExpired(t *testing.T) {
	other := NewSigner("other", time.Hour)
	tok, err := other.Sign("WO-1", map[uint]int{1: 1})
	require.NoError(t, err)

	s := NewSigner("secret", time.Minute)
	assert.True(t, apperr.Is(s.VerifyConfirmation(tok, map[uint]int{1: 1}), apperr.KindValidation))

	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return issued }
	tok, err = s.Sign("WO-1", map[uint]int{1: 1})
	require.NoError(t, err)
	s.now = func() time.Time { return issued.Add(2 * time.Minute) }
	assert.True(t, apperr.Is(s.VerifyConfirmation(tok, map[uint]int{1: 1}), apperr.KindValidation))

	assert.True(t, apperr.Is(s.VerifyConfirmation("not-a-token", map[uint]int{1: 1}), apperr.KindValidation))
}
