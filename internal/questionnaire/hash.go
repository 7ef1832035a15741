package questionnaire

import (
	"crypto/sha256"
	"encoding/hex"
	"github.com/badgerinator/businessProcessAnalysis/internal/errors"
	"github.com/gowebpki/jcs"
)

// Hash returns the SHA-256 hex digest of the RFC 8785 canonical form of the JSON document.
//
// Key order and insignificant whitespace do not change the hash.
func Hash(doc []byte) (string, error) {
	canonical, err := jcs.Transform(doc)
	if err != nil {
		return "", errors.Wrap(ErrMalformed, err.Error())
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
