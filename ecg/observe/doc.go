// Package observe provides lead.Observer implementations that log stage
// events and export them as Prometheus metrics.
package observe
