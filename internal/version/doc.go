// Package version exposes build metadata for the domainintel binary.
package version
