package models

// Ownable is implemented by entities whose mutation is gated on the
// identity that created them. OwnerID returns the owning user's ID;
// entities without a resolvable owner must not implement this interface,
// which makes the ownership check fail closed.
type Ownable interface {
	OwnerID() string
}
