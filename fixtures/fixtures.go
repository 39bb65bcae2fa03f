// Package fixtures embeds the sample catalog served by the memory store and
// the in-process client.
package fixtures

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/sahilchouksey/degreefyd-api/model"
)

//go:embed colleges.json
var collegesJSON []byte

// Colleges returns a fresh copy of the sample colleges. Twelve colleges, nine
// of them published.
func Colleges() ([]model.College, error) {
	var colleges []model.College
	if err := json.Unmarshal(collegesJSON, &colleges); err != nil {
		return nil, fmt.Errorf("decode college fixtures: %w", err)
	}
	return colleges, nil
}

// MustColleges is Colleges for callers that cannot recover from a broken build
func MustColleges() []model.College {
	colleges, err := Colleges()
	if err != nil {
		panic(err)
	}
	return colleges
}
