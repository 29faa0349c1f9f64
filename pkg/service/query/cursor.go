package query

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/amirasaad/mobank/pkg/domain"
	repo "github.com/amirasaad/mobank/pkg/repository/transaction"
	"github.com/google/uuid"
)

// EncodeCursor renders the sort key of a row as an opaque token.
func EncodeCursor(c repo.Cursor) string {
	raw := strconv.FormatInt(c.CreatedAt.UnixNano(), 10) + "|" + c.ID.String()
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a token produced by EncodeCursor.
func DecodeCursor(s string) (repo.Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return repo.Cursor{}, fmt.Errorf("%w: malformed cursor", domain.ErrInvalidRequest)
	}
	ts, id, ok := strings.Cut(string(raw), "|")
	if !ok {
		return repo.Cursor{}, fmt.Errorf("%w: malformed cursor", domain.ErrInvalidRequest)
	}
	nanos, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return repo.Cursor{}, fmt.Errorf("%w: malformed cursor", domain.ErrInvalidRequest)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return repo.Cursor{}, fmt.Errorf("%w: malformed cursor", domain.ErrInvalidRequest)
	}
	return repo.Cursor{CreatedAt: time.Unix(0, nanos).UTC(), ID: parsed}, nil
}
