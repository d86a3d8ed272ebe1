// Package version reports the build version of an application using seqkit.
// The version string is stamped into loaded configuration and into the
// OpenTelemetry resource of exported spans and metrics.
package version
