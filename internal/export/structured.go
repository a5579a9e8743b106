// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/json"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/scholar-scraper/pkg/types"
)

// WriteJSON writes the whole session, records and per-query outcomes, as
// indented JSON.
func WriteJSON(path string, session types.Session) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// WriteYAML writes the session as YAML.
func WriteYAML(path string, session types.Session) error {
	data, err := yaml.Marshal(&session)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
