// Package core contains the essential registry components of the system.
//
// Subpackages:
//
//   - implmap: the implementors map, fragment decoding and the artifact codec
//   - logger: logging abstractions and configuration
//   - registry: the publisher that hands complete maps to the page hook
package core
