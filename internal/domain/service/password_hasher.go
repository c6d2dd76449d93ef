package service

// PasswordHasher defines the interface for hashing and checking passwords.
// This abstracts the hashing algorithm from the use cases.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password.
	Hash(password string) (string, error)

	// Check compares a plaintext password with a stored hash.
	Check(password, hash string) bool
}
