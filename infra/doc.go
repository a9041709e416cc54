// Package infra contains the adapters behind the core ports: profile
// sources, node catalogs, result writers, metrics sinks and the MQTT
// publisher. Each adapter registers itself with the matching core registry
// and depends only on the core packages.
package infra
