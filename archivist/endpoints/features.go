package endpoints

import (
	"context"
)

// Features are presentation switches. They are served as is and never read
// by the services.
type Features struct {
	DocumentPermissionsScreen bool `toml:"document_permissions_screen" json:"documentPermissionsScreen"`
}

func NewFeaturesEndpoint(f Features) func(context.Context, interface{}) (interface{}, error) {
	return func(context.Context, interface{}) (interface{}, error) {
		return map[string]interface{}{
			"data": f,
		}, nil
	}
}
