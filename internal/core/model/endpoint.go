package model

import "fmt"

// Endpoint identifies one operation of one version of a service.
// Two endpoints are the same node iff all three fields match.
type Endpoint struct {
	Service  string `json:"service"`
	Version  string `json:"version"`
	Endpoint string `json:"endpoint"`
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s/%s/%s", e.Service, e.Version, e.Endpoint)
}

// WithVersion returns the same service endpoint at another version.
func (e Endpoint) WithVersion(version string) Endpoint {
	return Endpoint{Service: e.Service, Version: version, Endpoint: e.Endpoint}
}
