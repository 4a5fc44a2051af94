package formatter

import (
	"encoding/json"

	"github.com/theoremus-urban-solutions/bus-route-animator/siri"
)

type responseBuilder struct{}

// NewResponseBuilder creates a new response builder for formatting SIRI responses
func NewResponseBuilder() *responseBuilder {
	return &responseBuilder{}
}

// BuildJSON serializes a SIRI response to JSON
func (rb *responseBuilder) BuildJSON(res *siri.SiriResponse) []byte {
	b, _ := json.Marshal(res)
	return b
}
