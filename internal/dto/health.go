package dto

// HealthResponse is returned by the health endpoint of the service.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}
