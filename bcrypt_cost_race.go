//go:build race

package auth

import "golang.org/x/crypto/bcrypt"

// Race-enabled builds use the default cost so the suite stays fast
// under the race detector's overhead.
func passwordHashCost() int {
	return bcrypt.DefaultCost
}
