package meshconfig

import (
	"net/url"

	mberrors "github.com/storefront-tools/meshbuild/internal/errors"
)

// RewriteSourceURLs re-points every source handler at the environment's base
// URL, preserving each endpoint's path and query. This is how one mesh config
// serves staging and production from a single definition.
func RewriteSourceURLs(cfg *MeshConfig, baseURL string) error {
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return mberrors.ValidationFailed("commerce_base_url", "must be an absolute URL")
	}

	for i := range cfg.Sources {
		src := &cfg.Sources[i]
		endpoint := src.Handler.Endpoint()
		if endpoint == "" {
			return mberrors.ValidationFailed("sources", "source has no endpoint").
				WithContext("source", src.Name)
		}
		u, err := url.Parse(endpoint)
		if err != nil {
			return mberrors.ValidationFailed("sources", "source endpoint is not a valid URL").
				WithContext("source", src.Name).
				WithContext("endpoint", endpoint)
		}
		u.Scheme = base.Scheme
		u.Host = base.Host
		if err := src.Handler.SetEndpoint(u.String()); err != nil {
			return err
		}
	}
	return nil
}

// Normalize resolves the supplied type defs to SDL and attaches them to the
// config, returning the normalized config ready for hashing and writing.
func Normalize(cfg MeshConfig, typeDefs TypeDefs) (MeshConfig, error) {
	sdl, err := typeDefs.ToSDL()
	if err != nil {
		return MeshConfig{}, err
	}
	cfg.AdditionalTypeDefs = sdl
	return cfg, nil
}
