// Package updater coordinates the update pipeline: check the manifest,
// download each pending package, install it, and report how the run ended.
//
// An Updater is an explicit value built from a Config; nothing about a run
// lives in package state. Versions are applied strictly in ascending order
// and the first failure halts the run with a terminal Status. Listeners
// observe finished versions and finished runs in registration order, and a
// listener error halts the run without undoing the work already done.
package updater
