package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/tallybook/statement_backend/internal/core/domain"
)

const timeFormat = time.RFC3339Nano // Use a precise time format

// EncodeCursor creates a base64 encoded token from a statement cursor.
// The token carries the (occurred_at, id) keyset pointer so pagination stays
// stable under concurrent writes.
func EncodeCursor(c domain.Cursor) string {
	tokenStr := fmt.Sprintf("%s|%s", c.OccurredAt.Format(timeFormat), c.ID)
	return base64.StdEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeCursor parses a base64 encoded token back into a statement cursor.
func DecodeCursor(token string) (domain.Cursor, error) {
	decodedBytes, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return domain.Cursor{}, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	tokenStr := string(decodedBytes)
	parts := strings.SplitN(tokenStr, "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		return domain.Cursor{}, fmt.Errorf("invalid pagination token format (split)")
	}

	occurredAt, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return domain.Cursor{}, fmt.Errorf("invalid pagination token format (timestamp parse): %w", err)
	}

	return domain.Cursor{OccurredAt: occurredAt, ID: parts[1]}, nil
}
