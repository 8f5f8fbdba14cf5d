package build

import (
	"strconv"
	"strings"

	"github.com/storefront-tools/meshbuild/internal/config"
)

// Variables derives the fixed template variable set from the effective
// configuration. The names are the placeholder tokens the resolver template
// uses; every variable is stringified since substitution is textual.
func Variables(cfg *config.Config, env config.Environment) map[string]string {
	base := strings.TrimRight(env.CommerceBaseURL, "/")
	return map[string]string{
		"COMMERCE_BASE_URL":     base,
		"COMMERCE_GRAPHQL_URL":  base + cfg.API.GraphQLPath,
		"CATALOG_SERVICE_PATH":  cfg.API.CatalogPath,
		"INVENTORY_API_PATH":    cfg.API.InventoryPath,
		"MESH_API_KEY":          cfg.Mesh.APIKey,
		"DEFAULT_CACHE_TTL":     strconv.Itoa(cfg.Caching.DefaultTTLSeconds),
		"PRODUCT_CACHE_TTL":     strconv.Itoa(cfg.Caching.ProductTTLSeconds),
		"CATEGORY_CACHE_TTL":    strconv.Itoa(cfg.Caching.CategoryTTLSeconds),
		"INVENTORY_CACHE_TTL":   strconv.Itoa(cfg.Caching.InventoryTTLSeconds),
		"MAX_BATCH_SIZE":        strconv.Itoa(cfg.Batching.MaxBatchSize),
		"BATCH_WAIT_MS":         strconv.Itoa(cfg.Batching.BatchWaitMillis),
		"IS_PRODUCTION":         strconv.FormatBool(env.Production),
	}
}
