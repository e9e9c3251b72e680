package password

import "golang.org/x/crypto/bcrypt"

// Hasher hashes and verifies passwords. Implementations must be slow by
// design and must not leak timing information correlated with where a
// mismatch occurs.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(storedHash, supplied string) bool
}

// Bcrypt is the default Hasher. The zero value uses bcrypt.DefaultCost.
type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify reports whether supplied matches storedHash. An empty stored hash
// never matches (externally provisioned accounts have no password).
func (b Bcrypt) Verify(storedHash, supplied string) bool {
	if storedHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(supplied)) == nil
}
