package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const timeFormat = time.RFC3339Nano

// EncodeRunToken creates an opaque keyset token from the last run of a page.
func EncodeRunToken(executedAt time.Time, runID int64) string {
	tokenStr := fmt.Sprintf("%s|%d", executedAt.UTC().Format(timeFormat), runID)
	return base64.URLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeRunToken parses a token produced by EncodeRunToken.
func DecodeRunToken(token string) (time.Time, int64, error) {
	decodedBytes, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 2)
	if len(parts) != 2 {
		return time.Time{}, 0, fmt.Errorf("invalid pagination token format (split)")
	}

	executedAt, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid pagination token format (executed_at parse): %w", err)
	}
	runID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || runID <= 0 {
		return time.Time{}, 0, fmt.Errorf("invalid pagination token format (run id)")
	}
	return executedAt, runID, nil
}
