package http

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed docs/openapi.yaml
var openapiYAML []byte

type SystemHandler struct {
	baseURL     string
	started     time.Time
	now         func() time.Time
	openapiJSON []byte
}

// NewSystemHandler renders the embedded OpenAPI document to JSON once.
func NewSystemHandler(baseURL string) (*SystemHandler, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(openapiYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse openapi document: %w", err)
	}
	rendered, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("render openapi document: %w", err)
	}
	return &SystemHandler{
		baseURL:     baseURL,
		started:     time.Now(),
		now:         time.Now,
		openapiJSON: rendered,
	}, nil
}

type ServiceDescriptor struct {
	Name          string            `json:"name"`
	Version       string            `json:"version"`
	Description   string            `json:"description"`
	BaseURL       string            `json:"baseUrl"`
	Endpoints     map[string]string `json:"endpoints"`
	Documentation map[string]string `json:"documentation"`
}

func (h *SystemHandler) Root(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, ServiceDescriptor{
		Name:        "Watch Merchant API",
		Version:     "1.0.0",
		Description: "Demo watch merchant API for AP2 integration",
		BaseURL:     h.baseURL,
		Endpoints: map[string]string{
			"products":    apiPrefix + "/products",
			"cart":        apiPrefix + "/cart",
			"pricing":     apiPrefix + "/pricing",
			"inventory":   apiPrefix + "/inventory",
			"shipping":    apiPrefix + "/shipping",
			"orders":      apiPrefix + "/orders",
			"brands":      apiPrefix + "/brands",
			"categories":  apiPrefix + "/categories",
			"collections": apiPrefix + "/collections",
			"health":      apiPrefix + "/health",
		},
		Documentation: map[string]string{
			"openapi":     "/docs/openapi.yaml",
			"openapiJson": "/docs/openapi.json",
		},
	})
}

type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    float64   `json:"uptime"`
}

func (h *SystemHandler) Health(w http.ResponseWriter, _ *http.Request) {
	now := h.now()
	respondOK(w, http.StatusOK, HealthStatus{
		Status:    "healthy",
		Timestamp: now.UTC(),
		Uptime:    now.Sub(h.started).Seconds(),
	})
}

func (h *SystemHandler) OpenAPIYAML(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openapiYAML)
}

func (h *SystemHandler) OpenAPIJSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.openapiJSON)
}
