package entity

// UserLogin binds an external login (provider + provider key) to a user.
type UserLogin struct {
	LoginProvider string
	ProviderKey   string
	UserID        int64
}

// UserLoginKey is the composite primary key of a UserLogin.
type UserLoginKey struct {
	LoginProvider string
	ProviderKey   string
	UserID        int64
}

func (l *UserLogin) Key() UserLoginKey {
	return UserLoginKey{LoginProvider: l.LoginProvider, ProviderKey: l.ProviderKey, UserID: l.UserID}
}

// LoginInfo is the provider/key pair exchanged with the authentication manager.
type LoginInfo struct {
	LoginProvider string
	ProviderKey   string
}
