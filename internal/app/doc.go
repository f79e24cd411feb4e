// Package app wires the signals service together and manages its
// lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, YAML, .env, EGX_* environment)
//	2. Initialize logging and OpenTelemetry
//	3. Resolve data directories and create the output ones
//	4. Build the snapshot cache and the services
//	5. Set up middleware and handlers
//	6. Create the HTTP server
//
// # Usage
//
//	a, err := app.NewApplication("")
//	if err != nil {
//	    return err
//	}
//	return a.Run()
//
// Run blocks until SIGINT or SIGTERM, then drains in-flight requests,
// closes the cache and flushes telemetry. Initialization errors are
// returned to the caller; the package never calls os.Exit.
package app
