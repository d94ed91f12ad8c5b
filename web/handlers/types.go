package handlers

import (
	"time"

	"github.com/scrypster/kindred/internal/config"
	"github.com/scrypster/kindred/internal/engine"
)

// ErrorResponse is the standard error response format for the API.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// CreatePersonRequest is the body of POST /api/people. An empty ID asks the
// server to generate one.
type CreatePersonRequest struct {
	ID          string `json:"id" validate:"omitempty,max=128"`
	DisplayName string `json:"display_name" validate:"max=256"`
	Gender      string `json:"gender" validate:"omitempty,oneof=male female unknown"`
	IsAlive     *bool  `json:"is_alive"`
}

// CreateRelationshipRequest is the body of POST /api/relationships.
// For parent edges PersonA is the parent and PersonB the child.
type CreateRelationshipRequest struct {
	PersonA string `json:"person_a" validate:"required,max=128"`
	PersonB string `json:"person_b" validate:"required,max=128,nefield=PersonA"`
	Type    string `json:"type" validate:"required,oneof=parent spouse sibling"`
}

// HealthResponse is the response format for GET /api/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Store   string `json:"store"`
}

// ConfigResponse is the response format for GET /api/config.
// The API token is masked for security.
type ConfigResponse struct {
	Storage  StorageConfigResponse  `json:"storage"`
	Limits   LimitsConfigResponse   `json:"limits"`
	Cache    CacheConfigResponse    `json:"cache"`
	Security SecurityConfigResponse `json:"security"`
}

// StorageConfigResponse names the active backend.
type StorageConfigResponse struct {
	Engine string `json:"engine"`
}

// LimitsConfigResponse reports the effective depth limits.
type LimitsConfigResponse struct {
	ClassifyDefaultDepth int  `json:"classify_default_depth"`
	ClassifyMaxDepth     int  `json:"classify_max_depth"`
	ResolveDefaultDepth  int  `json:"resolve_default_depth"`
	ResolveMaxDepth      int  `json:"resolve_max_depth"`
	ExplicitSiblingsOnly bool `json:"explicit_siblings_only"`
}

// CacheConfigResponse reports result cache settings.
type CacheConfigResponse struct {
	Enabled bool   `json:"enabled"`
	Size    int    `json:"size"`
	TTL     string `json:"ttl"`
}

// SecurityConfigResponse reports the security mode.
type SecurityConfigResponse struct {
	Mode     string `json:"mode"`
	APIToken string `json:"api_token"` // Masked
}

// MaskAPIKey masks an API key for safe display.
// Shows first 7 chars and last 4 chars, hides the middle.
func MaskAPIKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) < 12 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}

// ToConfigResponse converts a config.Config and the engine's effective
// limits to a ConfigResponse with masked secrets.
func ToConfigResponse(cfg *config.Config, limits engine.Config) ConfigResponse {
	return ConfigResponse{
		Storage: StorageConfigResponse{Engine: cfg.Storage.StorageEngine},
		Limits: LimitsConfigResponse{
			ClassifyDefaultDepth: limits.Classify.Default,
			ClassifyMaxDepth:     limits.Classify.Ceiling,
			ResolveDefaultDepth:  limits.Resolve.Default,
			ResolveMaxDepth:      limits.Resolve.Ceiling,
			ExplicitSiblingsOnly: limits.SiblingPolicy == engine.SiblingsExplicitOnly,
		},
		Cache: CacheConfigResponse{
			Enabled: cfg.Cache.Enabled,
			Size:    cfg.Cache.Size,
			TTL:     cfg.Cache.TTL.Round(time.Millisecond).String(),
		},
		Security: SecurityConfigResponse{
			Mode:     cfg.Security.SecurityMode,
			APIToken: MaskAPIKey(cfg.Security.APIToken),
		},
	}
}
