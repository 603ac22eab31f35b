package api

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/mod/semver"

	"shopengine/internal/model"
)

// ClientVersion is the API version this engine speaks. The storefront
// advertises its version via GET /meta; compatibility is same major
// plus ClientVersion >= the server's minimum.
const ClientVersion = "1.4.0"

// Meta fetches the storefront service metadata.
func (c *Client) Meta(ctx context.Context) (*model.ServiceMeta, error) {
	req, err := c.newRequest(ctx, http.MethodGet, pathMeta, nil)
	if err != nil {
		return nil, fmt.Errorf("creating meta request: %w", err)
	}

	var meta model.ServiceMeta
	if err := c.do(req, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// CheckCompatibility fetches /meta and verifies this client can talk
// to the storefront. Called once at session start; a failure here is a
// hard configuration error, not something to paper over at runtime.
func (c *Client) CheckCompatibility(ctx context.Context) error {
	meta, err := c.Meta(ctx)
	if err != nil {
		return fmt.Errorf("fetching service meta: %w", err)
	}
	return CheckVersions(meta)
}

// CheckVersions validates ClientVersion against the advertised server
// versions. Non-semver version strings fail closed.
func CheckVersions(meta *model.ServiceMeta) error {
	cv := normalizeVersion(ClientVersion)
	av := normalizeVersion(meta.APIVersion)

	if !semver.IsValid(av) {
		return fmt.Errorf("server advertises invalid api version %q", meta.APIVersion)
	}
	if semver.Major(av) != semver.Major(cv) {
		return fmt.Errorf("incompatible api major version: server %s, client %s",
			meta.APIVersion, ClientVersion)
	}

	if meta.MinClientVersion != "" {
		mv := normalizeVersion(meta.MinClientVersion)
		if !semver.IsValid(mv) {
			return fmt.Errorf("server advertises invalid min client version %q", meta.MinClientVersion)
		}
		if semver.Compare(cv, mv) < 0 {
			return fmt.Errorf("client %s below server minimum %s; upgrade required",
				ClientVersion, meta.MinClientVersion)
		}
	}

	return nil
}

// normalizeVersion adds the "v" prefix semver parsing requires.
func normalizeVersion(v string) string {
	if v == "" {
		return "v0.0.0"
	}
	if v[0] != 'v' {
		return "v" + v
	}
	return v
}
