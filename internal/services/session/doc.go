// Package session performs the individual session RPCs.
//
// Each method issues exactly one platform call and owns the persistence that
// goes with it: a new session id is stored as soon as it is received, and
// ending a session forgets it locally. Sequencing lives in the
// initialization service.
package session
