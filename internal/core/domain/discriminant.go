package domain

import (
	"errors"
	"fmt"
	"math/rand"
)

// DiscriminantSpace is the number of distinct discriminants available per
// username ("0001" through "9999").
const DiscriminantSpace = 9999

// ErrDiscriminantsExhausted indicates every discriminant for a username is taken.
var ErrDiscriminantsExhausted = errors.New("discriminant space exhausted for username")

// AllocateDiscriminant draws a free 4-digit discriminant for a username given
// the set already assigned to it. Allocation is rejection sampling: uniform
// draws in [1, 9999] until one misses the taken set. The capacity check
// guarantees a free slot exists, so no attempt bound is needed.
//
// Allocation and the subsequent insert are not atomic; the unique index on
// (username, discriminant) catches the race and the caller re-allocates.
func AllocateDiscriminant(taken map[string]struct{}) (string, error) {
	if len(taken) >= DiscriminantSpace {
		return "", ErrDiscriminantsExhausted
	}

	for {
		candidate := fmt.Sprintf("%04d", rand.Intn(DiscriminantSpace)+1)
		if _, used := taken[candidate]; !used {
			return candidate, nil
		}
	}
}
