package credentials

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// Word lists for temporary passwords handed to staff and parents in person
var adjectives = []string{
	"amber", "breezy", "calm", "cozy", "dusty", "early", "fuzzy", "gentle",
	"golden", "hazel", "honest", "jolly", "kind", "leafy", "lucky", "mellow",
	"misty", "nimble", "plucky", "quiet", "rosy", "rustic", "sandy", "silver",
	"snowy", "sunny", "tidy", "velvet", "warm", "witty",
}

var nouns = []string{
	"acorn", "badger", "beacon", "bramble", "canyon", "clover", "cricket", "dune",
	"ember", "fern", "harbor", "heron", "island", "lantern", "maple", "meadow",
	"otter", "pebble", "pine", "puffin", "quill", "river", "robin", "sparrow",
	"thistle", "tulip", "walnut", "willow", "wren", "yarrow",
}

// GenerateTemporaryPassword returns a password like "sunny-otter-4821". It
// is always longer than the minimum password length.
func GenerateTemporaryPassword() (string, error) {
	adjective, err := randomElement(adjectives)
	if err != nil {
		return "", err
	}

	noun, err := randomElement(nouns)
	if err != nil {
		return "", err
	}

	digits, err := randomDigits(4)
	if err != nil {
		return "", err
	}

	return strings.Join([]string{adjective, noun, digits}, "-"), nil
}

func randomDigits(n int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < n; i++ {
		max.Mul(max, big.NewInt(10))
	}
	num, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", n, num.Int64()), nil
}

// randomElement picks a random element from a string slice
func randomElement(slice []string) (string, error) {
	if len(slice) == 0 {
		return "", nil
	}

	num, err := rand.Int(rand.Reader, big.NewInt(int64(len(slice))))
	if err != nil {
		return "", err
	}

	return slice[num.Int64()], nil
}
