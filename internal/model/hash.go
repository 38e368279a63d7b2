package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainBuildContent prefixes build fingerprints. The version suffix allows
// a future change of algorithm without colliding with stored fingerprints.
const DomainBuildContent = "linebuild/content/v1"

// hashWithDomain computes SHA-256 with domain separation:
// SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint computes the content hash of a build's unit and assembly lists.
// Ids, versions and timestamps are excluded, so two builds with the same
// work fingerprint identically. Derived views are cached under this key.
func Fingerprint(units []WorkUnit, assemblies []Assembly) (string, error) {
	if units == nil {
		units = []WorkUnit{}
	}
	if assemblies == nil {
		assemblies = []Assembly{}
	}
	canonical, err := MarshalCanonical(map[string]any{
		"work_units": units,
		"assemblies": assemblies,
	})
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return hashWithDomain(DomainBuildContent, canonical), nil
}
