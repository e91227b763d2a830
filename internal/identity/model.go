package identity

// User is a snapshot of the Discord user object as returned by
// GET /users/@me. Fields the API reports as nullable or optional are
// pointers so that explicit null survives serialization.
type User struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	Discriminator string  `json:"discriminator"`
	Avatar        *string `json:"avatar"`
	Bot           *bool   `json:"bot"`
	System        *bool   `json:"system"`
	MFAEnabled    *bool   `json:"mfa_enabled"`
	Banner        *string `json:"banner"`
	AccentColor   *int    `json:"accent_color"`
	Locale        *string `json:"locale"`
	Verified      *bool   `json:"verified"`
	Email         *string `json:"email"`
	Flags         *int    `json:"flags"`
	PremiumType   *int    `json:"premium_type"`
	PublicFlags   *int    `json:"public_flags"`
}

// Guild is the partial guild object from GET /users/@me/guilds.
type Guild struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Icon        *string  `json:"icon"`
	Owner       bool     `json:"owner"`
	Permissions string   `json:"permissions"`
	Features    []string `json:"features"`
}

// Identity is the resolved unit cached per token: the user profile
// plus the guilds the token could see at resolution time. Guilds is
// always non-nil; it is empty when guild retrieval is disabled.
type Identity struct {
	User   User    `json:"user"`
	Guilds []Guild `json:"guilds"`
}
