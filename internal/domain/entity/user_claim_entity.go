package entity

type UserClaim struct {
	ID         int64
	UserID     int64
	ClaimType  string
	ClaimValue string
}

// Claim is a type/value pair without row identity.
type Claim struct {
	Type  string
	Value string
}
