package types

// Profile is the public-facing record of a user. Its id equals the user's
// id; it is created lazily the first time an identity is seen.
type Profile struct {
	ID      string `bson:"_id" json:"id"`
	Name    string `bson:"name" json:"name"`
	Email   string `bson:"email" json:"email"`
	IsAdmin bool   `bson:"isAdmin" json:"isAdmin"`
}
