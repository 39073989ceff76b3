package auth

// Repository is the credential DB's interface to the core (spec.md §6):
// Register and Login are the only two operations the engine ever needs,
// matching the wire's AddClient/Login request.
type Repository interface {
	// Register inserts a new account. Returns false on a name collision
	// (constraint violation), true on a successful insert.
	Register(name string, secret [4]uint32) (bool, error)

	// Login reports whether secret matches the stored hash for name. On a
	// match against a deprecated secret version, the stored hash is
	// transparently rewritten under the current version (spec.md §6, P6).
	Login(name string, secret [4]uint32) (bool, error)
}
