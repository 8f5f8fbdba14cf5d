// Package meshconfig models the API Mesh configuration that gets deployed:
// upstream sources, additional GraphQL type definitions, resolver references,
// and the optional response/caching block.
package meshconfig

import (
	mberrors "github.com/storefront-tools/meshbuild/internal/errors"
)

// MeshConfig is the logical object written to mesh.json and hashed for the
// regeneration gate.
type MeshConfig struct {
	Sources             []Source        `json:"sources"`
	AdditionalTypeDefs  string          `json:"additionalTypeDefs,omitempty"`
	AdditionalResolvers []string        `json:"additionalResolvers,omitempty"`
	ResponseConfig      *ResponseConfig `json:"responseConfig,omitempty"`

	// Timestamp is the build time stamped into mesh.json. It is volatile and
	// excluded from config digests.
	Timestamp string `json:"timestamp,omitempty"`
}

// VolatileKeys lists top-level MeshConfig fields that must never influence
// the regeneration decision.
func VolatileKeys() []string { return []string{"timestamp"} }

// Source is one upstream data source aggregated by the mesh.
type Source struct {
	Name    string        `json:"name"`
	Handler SourceHandler `json:"handler"`
}

// SourceHandler holds exactly one protocol-specific handler block.
type SourceHandler struct {
	GraphQL *GraphQLHandler `json:"graphql,omitempty"`
	OpenAPI *OpenAPIHandler `json:"openapi,omitempty"`
}

// GraphQLHandler proxies an upstream GraphQL endpoint.
type GraphQLHandler struct {
	Endpoint         string            `json:"endpoint"`
	OperationHeaders map[string]string `json:"operationHeaders,omitempty"`
	UseGETForQueries bool              `json:"useGETForQueries,omitempty"`
}

// OpenAPIHandler proxies an upstream REST endpoint described by OpenAPI.
type OpenAPIHandler struct {
	Source  string            `json:"source"`
	Headers map[string]string `json:"schemaHeaders,omitempty"`
}

// ResponseConfig is the mesh-level response/caching block.
type ResponseConfig struct {
	IncludeHTTPDetails bool           `json:"includeHTTPDetails,omitempty"`
	Cache              bool           `json:"cache,omitempty"`
	TTLSeconds         int            `json:"ttl,omitempty"`
	Headers            map[string]any `json:"headers,omitempty"`
}

// Endpoint returns the handler's upstream URL regardless of protocol, or ""
// for an empty handler.
func (h SourceHandler) Endpoint() string {
	switch {
	case h.GraphQL != nil:
		return h.GraphQL.Endpoint
	case h.OpenAPI != nil:
		return h.OpenAPI.Source
	default:
		return ""
	}
}

// CloneSources deep-copies a source list so URL rewriting never mutates the
// loaded configuration.
func CloneSources(in []Source) []Source {
	out := make([]Source, len(in))
	for i, src := range in {
		out[i] = src
		if src.Handler.GraphQL != nil {
			gql := *src.Handler.GraphQL
			out[i].Handler.GraphQL = &gql
		}
		if src.Handler.OpenAPI != nil {
			oa := *src.Handler.OpenAPI
			out[i].Handler.OpenAPI = &oa
		}
	}
	return out
}

// SetEndpoint updates the handler's upstream URL in place.
func (h *SourceHandler) SetEndpoint(endpoint string) error {
	switch {
	case h.GraphQL != nil:
		h.GraphQL.Endpoint = endpoint
	case h.OpenAPI != nil:
		h.OpenAPI.Source = endpoint
	default:
		return mberrors.ValidationFailed("handler", "source has no graphql or openapi handler")
	}
	return nil
}
