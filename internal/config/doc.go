// Package config defines updater settings used by the stepladder commands and
// provides helpers to load, validate and save them in YAML format.
//
// The Config type holds the manifest URL, the install and temp directories,
// and the knobs controlling caching, fetching, and run policy.
package config
