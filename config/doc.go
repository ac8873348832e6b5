// Package config loads routecost configuration.
//
// Configuration comes from a single file named by the --config flag or the
// ROUTECOST_CONFIG environment variable. There is no discovery and no
// environment override of individual values. Files ending in .toml are
// decoded as TOML; .yaml and .yml as YAML.
//
// Example (YAML):
//
//	profile:
//	  name: car-fast
//	  metadata: lookups.dat
//	  contexts: [way, node]
//	cache:
//	  capacity: 4096
//	codec:
//	  format: varlength
//	health:
//	  warning_hit_ratio: 0.5
//	observe:
//	  service_name: routecost
//	  logging:
//	    enabled: true
//	    level: info
//
// The metadata path may reference environment variables as $VAR or ${VAR};
// a ${VAR} that is unset fails the load. A relative metadata path is
// resolved against the directory of the config file.
package config
