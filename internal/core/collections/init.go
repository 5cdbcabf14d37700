// Package collections registers every storage collection with the core registry.
// Import this package to ensure all collections are registered.
package collections

// Each collection file uses init() to register its definitions.
