package auth

import (
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"hash"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

var errUnsupportedHash = errors.New("unsupported password hash format")

// Defaults werkzeug applies when a method string omits its parameters.
const (
	werkzeugPBKDF2Iterations = 600000
	werkzeugScryptN          = 1 << 15
	werkzeugScryptR          = 8
	werkzeugScryptP          = 1
	werkzeugScryptKeyLen     = 64
)

// HashPassword returns a salted bcrypt hash.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword verifies password against a stored hash. Besides bcrypt it
// accepts the werkzeug "method$salt$hash" encodings (pbkdf2:sha256,
// pbkdf2:sha512 and scrypt) so existing accounts keep working.
func CheckPassword(stored, password string) (bool, error) {
	if strings.HasPrefix(stored, "$2") {
		err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return err == nil, err
	}

	method, salt, want, ok := splitWerkzeug(stored)
	if !ok {
		return false, errUnsupportedHash
	}
	got, err := werkzeugDigest(method, salt, password)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1, nil
}

func splitWerkzeug(stored string) (method, salt, digest string, ok bool) {
	parts := strings.SplitN(stored, "$", 3)
	if len(parts) != 3 {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

func werkzeugDigest(method, salt, password string) (string, error) {
	args := strings.Split(method, ":")
	switch args[0] {
	case "pbkdf2":
		if len(args) < 2 || len(args) > 3 {
			return "", errUnsupportedHash
		}
		var newHash func() hash.Hash
		switch args[1] {
		case "sha256":
			newHash = sha256.New
		case "sha512":
			newHash = sha512.New
		default:
			return "", errUnsupportedHash
		}
		iterations := werkzeugPBKDF2Iterations
		if len(args) == 3 {
			n, err := strconv.Atoi(args[2])
			if err != nil || n <= 0 {
				return "", errUnsupportedHash
			}
			iterations = n
		}
		key := pbkdf2.Key([]byte(password), []byte(salt), iterations, newHash().Size(), newHash)
		return hex.EncodeToString(key), nil
	case "scrypt":
		n, r, p := werkzeugScryptN, werkzeugScryptR, werkzeugScryptP
		if len(args) == 4 {
			var err error
			if n, err = strconv.Atoi(args[1]); err != nil {
				return "", errUnsupportedHash
			}
			if r, err = strconv.Atoi(args[2]); err != nil {
				return "", errUnsupportedHash
			}
			if p, err = strconv.Atoi(args[3]); err != nil {
				return "", errUnsupportedHash
			}
		} else if len(args) != 1 {
			return "", errUnsupportedHash
		}
		key, err := scrypt.Key([]byte(password), []byte(salt), n, r, p, werkzeugScryptKeyLen)
		if err != nil {
			return "", err
		}
		return hex.EncodeToString(key), nil
	}
	return "", errUnsupportedHash
}
