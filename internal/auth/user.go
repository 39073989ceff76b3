package auth

// Account is one row of the credential table: a name and its versioned
// secret hash (spec.md §6 — table `auth(name TEXT UNIQUE, secret TEXT)`).
type Account struct {
	Name   string
	Secret string // version;salt0;salt1;hash
}
