package user

// User represents a user account entity in the system.
type User struct {
	ID           int64  // ID is the unique identifier assigned by the store
	Username     string // Username is the unique email address used to log in
	PasswordHash string // PasswordHash is the bcrypt hash of the password, never sent to clients
	Firstname    string // Firstname is the user's given name
	Lastname     string // Lastname is the user's family name
	Phone        string // Phone is an optional contact number
}
