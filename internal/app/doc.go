// Package app wires the analytics server together and manages its
// lifecycle.
//
// # Initialization Flow
//
//  1. Load configuration from .env, environment and an optional YAML file
//  2. Initialize the slog logger and OpenTelemetry providers
//  3. Resolve data paths and create missing directories
//  4. Build the dataset loader, forecast store, result cache and services
//  5. Set up the chi router with middleware and handlers
//  6. Start the HTTP server and warm the canonical dataset
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// Run blocks until SIGINT or SIGTERM, then shuts the server down, stops the
// cache janitor and flushes telemetry. Initialization errors are returned
// to the caller; the package never calls os.Exit.
package app
