package factory

// Package factory provides a small generic registry used to build
// configurable modules (profile sources, node catalogs, result writers and
// metrics sinks) from a type name and a raw configuration map.
