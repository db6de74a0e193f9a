package service

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// minorToMajor converts a gateway minor-unit integer (cents) to the stored
// decimal major-unit amount. The division by 100 happens here and nowhere
// else.
func minorToMajor(minor *int64) decimal.Decimal {
	if minor == nil {
		return decimal.Zero
	}
	return decimal.New(*minor, -2)
}

// epochToDate normalizes an epoch-seconds timestamp to a calendar date.
func epochToDate(epoch *int64) *datatypes.Date {
	if epoch == nil || *epoch == 0 {
		return nil
	}
	d := datatypes.Date(time.Unix(*epoch, 0).UTC().Truncate(24 * time.Hour))
	return &d
}

// epochToTime returns the full timestamp for fields where event timing
// itself matters.
func epochToTime(epoch *int64, fallback int64) time.Time {
	if epoch != nil && *epoch != 0 {
		return time.Unix(*epoch, 0).UTC()
	}
	if fallback != 0 {
		return time.Unix(fallback, 0).UTC()
	}
	return time.Now().UTC()
}

func dateToday() *datatypes.Date {
	d := datatypes.Date(time.Now().UTC().Truncate(24 * time.Hour))
	return &d
}

func normalizeCurrency(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

func optString(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return &raw
}

func boolOrDefault(value *bool, def bool) bool {
	if value == nil {
		return def
	}
	return *value
}

// parseFeatures turns the metadata feature field into a JSON array. Both a
// JSON array literal and a comma-separated list are accepted.
func parseFeatures(metadata map[string]string) datatypes.JSON {
	raw := strings.TrimSpace(metadata["features"])
	if raw == "" {
		return nil
	}

	if strings.HasPrefix(raw, "[") {
		var features []string
		if err := json.Unmarshal([]byte(raw), &features); err == nil {
			encoded, err := json.Marshal(features)
			if err == nil {
				return datatypes.JSON(encoded)
			}
		}
	}

	parts := strings.Split(raw, ",")
	features := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			features = append(features, part)
		}
	}
	if len(features) == 0 {
		return nil
	}
	encoded, err := json.Marshal(features)
	if err != nil {
		return nil
	}
	return datatypes.JSON(encoded)
}

// parseDisplay reads the UI-visibility flag; visible unless metadata
// explicitly disables it.
func parseDisplay(metadata map[string]string) bool {
	switch strings.ToLower(strings.TrimSpace(metadata["display"])) {
	case "false", "0", "no", "off":
		return false
	default:
		return true
	}
}

func metadataMap(metadata map[string]string) datatypes.JSONMap {
	if len(metadata) == 0 {
		return nil
	}
	out := make(datatypes.JSONMap, len(metadata))
	for key, value := range metadata {
		out[key] = value
	}
	return out
}
