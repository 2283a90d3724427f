// Versioning utilities for CatalogConfig.

package primitives

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// ComputeVersion computes a deterministic version for a CatalogConfig.
// Priority: user-provided config.Version, else SHA256(config JSON)[:8].
func ComputeVersion(config *CatalogConfig) string {
	if config.Version != "" {
		return config.Version
	}

	data, err := json.Marshal(config)
	if err != nil {
		return "invalid"
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash[:8])
}
