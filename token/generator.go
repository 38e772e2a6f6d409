package token

import (
	"strings"

	"github.com/google/uuid"
)

// IDGenerator produces token and code values.
type IDGenerator interface {
	Generate() (string, error)
}

type IDGeneratorFunc func() (string, error)

func (f IDGeneratorFunc) Generate() (string, error) {
	return f()
}

// UUIDGenerator yields random v4 UUIDs with the dashes removed.
type UUIDGenerator struct{}

func (UUIDGenerator) Generate() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(id.String(), "-", ""), nil
}
