// Package config handles loading and validating the Rwanda lookup service
// configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Loading .env files into the process environment
//   - Overriding with RWANDA_* environment variables
//   - Validation of required fields
//
// Sensitive values (MQTT password, InfluxDB token) should be set via
// environment variables rather than committed to the config file.
//
// Usage:
//
//	if err := config.LoadEnvFiles(".env"); err != nil {
//	    log.Fatal(err)
//	}
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Service.Name)
package config
