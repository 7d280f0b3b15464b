// Package testdata contains annotated types for schema extraction tests.
package testdata

// Status is a user lifecycle state.
type Status int

const (
	StatusUnknown Status = iota
	StatusActive
	StatusSuspended
)

// Color is a packed RGBA color.
//
// @kiwi:struct
type Color struct {
	Red   byte
	Green byte
	Blue  byte
	Alpha byte
}

// Profile describes one user account.
type Profile struct {
	ID       uint32   `kiwi:"1"`
	Name     string   `kiwi:"2"`
	Status   Status   `kiwi:"3"`
	Tags     []string `kiwi:"4"`
	Themes   []Color  `kiwi:"5"`
	Score    float32  `kiwi:"6"`
	Balance  int64    `kiwi:"7"`
	Verified bool     `kiwi:"8"`
	Internal string   `kiwi:"-"`
}

// Roster is a collection of profiles.
type Roster struct {
	Owner    *Profile  `kiwi:"1"`
	Profiles []Profile `kiwi:"2"`
}
