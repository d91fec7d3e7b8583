// Package apperr defines shared error sentinels for domainintel.
// It is a leaf package with no internal imports so that the lookup
// services, the enricher and the stores can all wrap the same sentinels.
package apperr
