// ABOUTME: Version information for the sampler
// ABOUTME: Product identity shown by the CLI and the TUI
package version

const (
	// Version is the release version
	Version = "0.1.0"

	// Product is the human-readable product name
	Product = "Resonate Sampler"

	// Manufacturer is the project name
	Manufacturer = "Resonate"
)

// String returns the product and version, e.g. "Resonate Sampler 0.1.0"
func String() string {
	return Product + " " + Version
}
