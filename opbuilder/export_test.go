package opbuilder

// This file exports internal helpers for testing only.

import "maps"

// Populations returns how many times the registry snapshot ran.
func (r *Registry) Populations() int {
	return int(r.populations.Load())
}

// ResetRegistrationsForTest empties both registration sources and returns a
// function that restores their previous contents.
func ResetRegistrationsForTest() (restore func()) {
	muRegister.Lock()
	defer muRegister.Unlock()
	savedBundled := maps.Clone(bundled)
	savedLocal := maps.Clone(local)
	bundled = make(map[string]Factory)
	local = make(map[string]Factory)
	return func() {
		muRegister.Lock()
		defer muRegister.Unlock()
		bundled = savedBundled
		local = savedLocal
	}
}
