package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"devsync/internal/common"
)

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return common.NewError(common.CodeValidation, "invalid JSON body", err)
	}
	return nil
}

// idFromPath parses the path segment at the given index as a UUID.
// Index 0 is the first segment after the leading slash.
func idFromPath(r *http.Request, index int) (common.UUID, error) {
	segments := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if index < 0 || index >= len(segments) {
		return "", common.NewError(common.CodeNotFound, "resource not found", nil)
	}
	parsed, err := common.ParseUUID(segments[index])
	if err != nil {
		return "", common.NewValidationError("invalid id", map[string]string{"id": "invalid uuid"})
	}
	return parsed, nil
}

func errUnauthorized() error {
	return common.NewError(common.CodeUnauthorized, "authentication required", nil)
}
