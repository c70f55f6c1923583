package webhook

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Endpoint kinds control the shape of the delivered JSON body.
const (
	KindSlack   = "slack"
	KindDiscord = "discord"
	KindGeneric = "generic"
)

// Endpoint is one outbound webhook target. Events lists the event names the
// endpoint subscribes to; a single "*" entry subscribes to everything.
type Endpoint struct {
	Name   string   `yaml:"name"`
	URL    string   `yaml:"url"`
	Kind   string   `yaml:"kind"`
	Events []string `yaml:"events"`
}

// Subscribed reports whether the endpoint wants the named event.
func (e Endpoint) Subscribed(eventName string) bool {
	for _, ev := range e.Events {
		if ev == "*" || ev == eventName {
			return true
		}
	}
	return false
}

// Registry holds the configured endpoints.
type Registry struct {
	Endpoints []Endpoint `yaml:"endpoints"`
}

// LoadRegistry reads the endpoint registry from a YAML file. An empty path
// yields an empty registry so the broadcaster can run as a no-op.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return &Registry{}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open webhook registry: %w", err)
	}
	defer file.Close()

	reg := &Registry{}
	if err := yaml.NewDecoder(file).Decode(reg); err != nil {
		return nil, fmt.Errorf("decode webhook registry: %w", err)
	}

	for i, ep := range reg.Endpoints {
		if ep.Name == "" || ep.URL == "" {
			return nil, fmt.Errorf("webhook endpoint %d: name and url are required", i)
		}
		switch ep.Kind {
		case KindSlack, KindDiscord, KindGeneric:
		case "":
			reg.Endpoints[i].Kind = KindGeneric
		default:
			return nil, fmt.Errorf("webhook endpoint %q: unknown kind %q", ep.Name, ep.Kind)
		}
	}
	return reg, nil
}

// For lists the endpoints subscribed to the named event.
func (r *Registry) For(eventName string) []Endpoint {
	var matched []Endpoint
	for _, ep := range r.Endpoints {
		if ep.Subscribed(eventName) {
			matched = append(matched, ep)
		}
	}
	return matched
}
