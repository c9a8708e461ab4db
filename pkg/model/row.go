package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Generic row values arrive from the adapter with driver-dependent
// concrete types (jsonb as []byte or string, timestamps as time.Time).
// The helpers below normalize them for the typed models.

func rowString(row map[string]any, key string) string {
	switch v := row[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func rowTime(row map[string]any, key string) time.Time {
	switch v := row[key].(type) {
	case time.Time:
		return v
	case string:
		t, _ := time.Parse(time.RFC3339Nano, v)
		return t
	}
	return time.Time{}
}

func rowBytes(row map[string]any, key string) []byte {
	switch v := row[key].(type) {
	case []byte:
		return v
	case string:
		return []byte(v)
	}
	return nil
}

func rowJSON(row map[string]any, key string, dest any) error {
	raw := rowBytes(row, key)
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode %s column: %w", key, err)
	}
	return nil
}
