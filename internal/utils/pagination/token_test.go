package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tallybook/statement_backend/internal/core/domain"
)

func TestEncodeDecodeCursor(t *testing.T) {
	// Standard values
	cursor := domain.Cursor{
		OccurredAt: time.Date(2023, 5, 15, 14, 30, 45, 123456789, time.UTC),
		ID:         "9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d",
	}

	token := EncodeCursor(cursor)
	assert.NotEmpty(t, token, "Token should not be empty")

	decoded, err := DecodeCursor(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, cursor.OccurredAt, decoded.OccurredAt, "Timestamp should match after decode")
	assert.Equal(t, cursor.ID, decoded.ID, "ID should match after decode")

	// Current time round-trip
	now := time.Now().UTC()
	nowToken := EncodeCursor(domain.Cursor{OccurredAt: now, ID: "abc"})
	decodedNow, err := DecodeCursor(nowToken)
	assert.NoError(t, err, "Decoding current time should not return an error")
	assert.True(t, now.Equal(decodedNow.OccurredAt), "Current time should match after decode")
}

func TestDecodeCursorError(t *testing.T) {
	// Invalid base64
	_, err := DecodeCursor("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode", "Error should mention base64 decoding")

	// Missing separator
	invalidToken := "MjAyMy0wNS0xNVQwMDowMDowMFo=" // Base64 encoded timestamp without separator
	_, err = DecodeCursor(invalidToken)
	assert.Error(t, err, "Should return an error for invalid token format")
	assert.Contains(t, err.Error(), "split", "Error should mention splitting issue")

	// Invalid timestamp
	badTime := base64.StdEncoding.EncodeToString([]byte("notadate|some-id"))
	_, err = DecodeCursor(badTime)
	assert.Error(t, err, "Should return an error for invalid timestamp format")
	assert.Contains(t, err.Error(), "timestamp parse", "Error should mention timestamp parsing issue")
}
