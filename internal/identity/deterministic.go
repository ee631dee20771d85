// Package identity derives stable document IDs, so re-importing a project
// updates existing rows instead of duplicating them.
package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const namespace = "go-sitecms"

// UUID hashes key into a UUID with go-hashid. Blank keys map to uuid.Nil.
func UUID(key string) uuid.UUID {
	key = strings.TrimSpace(key)
	if key == "" {
		return uuid.Nil
	}
	id, err := hashid.NewUUID(key, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || id == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key))
	}
	return id
}

// SiteUUID is keyed by the case-folded domain.
func SiteUUID(domain string) uuid.UUID {
	return UUID(entityKey("site", strings.ToLower(strings.TrimSpace(domain))))
}

// TemplateUUID is keyed by site and case-folded slug.
func TemplateUUID(siteID uuid.UUID, slug string) uuid.UUID {
	return UUID(entityKey("template", siteID.String(), strings.ToLower(strings.TrimSpace(slug))))
}

// PageUUID is keyed by site and route with surrounding slashes dropped, so
// "/docs" and "docs/" share an id.
func PageUUID(siteID uuid.UUID, route string) uuid.UUID {
	return UUID(entityKey("page", siteID.String(), strings.Trim(strings.TrimSpace(route), "/")))
}

func entityKey(kind string, parts ...string) string {
	return namespace + ":" + kind + ":" + strings.Join(parts, ":")
}
