// Package config loads application configuration.
//
// It uses Viper to read a config.yml found in standard locations, then
// overlays environment variables and an optional .env file loaded with
// godotenv.
//
// # Usage
//
//	var cfg DemoConfig
//	if err := config.LoadConfig("scenedi-demo", &cfg); err != nil {
//	    return err
//	}
//
// Environment variables override file values using underscore-separated
// paths (e.g., INJECTOR_DEFAULT_PARENT). InjectorConfig.Apply pushes the
// injector section into a di.Registry.
package config
