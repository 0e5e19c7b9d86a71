package domain

import (
	"strings"

	"github.com/gofrs/uuid/v5"
)

// CustomIDSeparator splits a custom id into its match and metadata segments.
const CustomIDSeparator = ":"

// SplitCustomID splits a custom id on the first separator occurrence.
// The metadata segment is empty when no separator is present.
func SplitCustomID(customID string) (match, metadata string) {
	match, metadata, _ = strings.Cut(customID, CustomIDSeparator)
	return match, metadata
}

// GenerateCustomID derives the match segment and full custom id from an
// explicitly supplied id, or mints a fresh opaque token when none was given.
func GenerateCustomID(explicit string) (match, customID string, err error) {
	if explicit == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return "", "", err
		}

		return id.String(), id.String(), nil
	}

	match, _ = SplitCustomID(explicit)
	return match, explicit, nil
}
