// Package config provides configuration loading for FacilityMap Core.
//
// Configuration is loaded in three layers, each overriding the last:
//
//  1. Hardcoded defaults (stock backend deployment layout)
//  2. YAML file values
//  3. FACILITYMAP_* environment variables
//
// The map-provider subscription key is the only mandatory setting; Load
// fails when it is absent. Every endpoint URL has a documented default and
// can be overridden independently, either as a path resolved against
// backend.base_url or as a full URL.
//
// # Usage
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return err
//	}
//	url := cfg.Backend.ResolveEndpoint(cfg.Backend.Endpoints.Sitemap)
package config
