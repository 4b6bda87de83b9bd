// Package qr handles the text payload embedded in batch labels. Turning the
// payload into a scannable image and back is the chat gateway's job; this
// package only builds payloads and extracts batch ids from scanned text.
package qr

import (
	"strconv"
	"strings"

	appErrors "github.com/atelier-ops/workshop-api/pkg/errors"
)

const idPrefix = "ID:"

// ExtractBatchID parses a scanned payload into a batch id. Accepted forms
// are a bare integer or a multi-line payload whose line starts with "ID:".
// Anything else is rejected; callers must not guess.
func ExtractBatchID(payload string) (int64, error) {
	trimmed := strings.TrimSpace(payload)
	if trimmed == "" {
		return 0, appErrors.Clone(appErrors.ErrValidation, "empty code payload")
	}
	if id, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return id, nil
	}
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, idPrefix) {
			continue
		}
		raw := strings.TrimSpace(strings.TrimPrefix(line, idPrefix))
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed id line in code payload")
		}
		return id, nil
	}
	return 0, appErrors.Clone(appErrors.ErrValidation, "no batch id in code payload")
}
