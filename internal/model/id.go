package model

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type IDType string

const (
	IDTypeResource    IDType = "res"
	IDTypeTask        IDType = "task"
	IDTypeWorkPackage IDType = "wp"
	IDTypeProject     IDType = "proj"
)

var validIDTypes = map[IDType]bool{
	IDTypeResource:    true,
	IDTypeTask:        true,
	IDTypeWorkPackage: true,
	IDTypeProject:     true,
}

var idRegex = regexp.MustCompile(`^(res|task|wp|proj)_[0-9]{10}_[0-9a-f]{8}$`)

func GenerateID(idType IDType) (string, error) {
	if !validIDTypes[idType] {
		return "", fmt.Errorf("invalid ID type: %s", idType)
	}

	timestamp := time.Now().Unix()
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	hexStr := hex.EncodeToString(randomBytes)

	return fmt.Sprintf("%s_%010d_%s", idType, timestamp, hexStr), nil
}

func ValidateID(id string) bool {
	return idRegex.MatchString(id)
}

func ParseIDType(id string) (IDType, error) {
	if !ValidateID(id) {
		return "", fmt.Errorf("invalid ID format: %s", id)
	}
	match := idRegex.FindStringSubmatch(id)
	return IDType(match[1]), nil
}

var idTypeForPrefix = map[string]IDType{
	"res":  IDTypeResource,
	"task": IDTypeTask,
	"wp":   IDTypeWorkPackage,
	"proj": IDTypeProject,
}

// CheckIDKind verifies an entity ID is present and, when it carries one of
// the typed prefixes, that the prefix matches the expected kind. Hand-
// assigned IDs without a known prefix pass; a task row holding a res_ ID
// does not.
func CheckIDKind(id string, want IDType) error {
	if id == "" {
		return fmt.Errorf("missing %s id", want)
	}
	prefix, _, ok := strings.Cut(id, "_")
	if !ok {
		return nil
	}
	got, known := idTypeForPrefix[prefix]
	if !known {
		return nil
	}
	if got != want {
		return fmt.Errorf("id %s carries a %s prefix, want %s", id, got, want)
	}
	return nil
}

func ParseIDTimestamp(id string) (time.Time, error) {
	if !ValidateID(id) {
		return time.Time{}, fmt.Errorf("invalid ID format: %s", id)
	}
	tsStr := id[len(id)-19 : len(id)-9]
	ts, err := strconv.ParseInt(tsStr, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp from ID %s: %w", id, err)
	}
	return time.Unix(ts, 0), nil
}
