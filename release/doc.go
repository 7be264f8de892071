// Package release describes what is available to install: it parses the
// version manifest published by the release server, orders release versions,
// and turns "manifest + current version" into an ordered update plan.
//
// All functions are pure: nothing here touches the network or the filesystem.
package release
