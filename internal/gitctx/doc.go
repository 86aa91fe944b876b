// Package gitctx reads repository metadata from the local git checkout.
//
// It shells out to git to resolve the checked-out branch and the origin remote
// so the CLI can default the branch argument and the target repository when
// run from inside a clone.
package gitctx
