package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Account    Account            `bson:"account" json:"account"`
	Timestamps Timestamps         `bson:"timestamps" json:"timestamps"`
}

type Account struct {
	Email string `bson:"email" json:"email"`
	// Password holds the argon2id hash, never the plain password.
	Password            string  `bson:"password" json:"-"`
	DisplayName         string  `bson:"displayName" json:"displayName"`
	FailedLoginAttempts []int64 `bson:"failedLoginAttempts" json:"-"`
}

type Timestamps struct {
	CreatedAt int64 `bson:"createdAt" json:"createdAt"`
	LastLogin int64 `bson:"lastLogin" json:"lastLogin"`
}

// HasMoreAttemptsRecently counts the attempts inside the given window
// (seconds before now) and compares against the allowed number.
func HasMoreAttemptsRecently(attempts []int64, allowed int, window int64) bool {
	cutoff := time.Now().Unix() - window
	count := 0
	for _, ts := range attempts {
		if ts > cutoff {
			count++
		}
	}
	return count > allowed
}

// RemoveAttemptsOlderThan drops attempt timestamps older than the given
// number of seconds.
func RemoveAttemptsOlderThan(attempts []int64, maxAge int64) []int64 {
	cutoff := time.Now().Unix() - maxAge
	kept := []int64{}
	for _, ts := range attempts {
		if ts > cutoff {
			kept = append(kept, ts)
		}
	}
	return kept
}
