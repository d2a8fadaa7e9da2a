// Package legacy converts constructor-style object definitions into factories.
//
// A Constructor is a Body run against a fresh object plus a Prototype chain
// supplying shared methods and data. Convert flattens the chain (the nearest
// definition wins) into the factory's Methods, deep-clones prototype data
// fields into its Props so instances never share them, copies Statics, and
// installs Body as the only initializer.
//
// WithInherited(false) restricts the copy to the constructor's own prototype.
package legacy
