package core

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

const (
	serialSegments      = 4
	serialSegmentLength = 4
	serialAlphabet      = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

var serialPattern = regexp.MustCompile(`^[0-9A-Z]{4}(-[0-9A-Z]{4}){3}$`)

// GenerateSerial returns a serial of the form XXXX-XXXX-XXXX-XXXX drawn from
// uppercase base36.
func GenerateSerial() (string, error) {
	max := big.NewInt(int64(len(serialAlphabet)))
	segments := make([]string, 0, serialSegments)
	for i := 0; i < serialSegments; i++ {
		buf := make([]byte, serialSegmentLength)
		for j := range buf {
			n, err := rand.Int(rand.Reader, max)
			if err != nil {
				return "", fmt.Errorf("failed to generate serial: %w", err)
			}
			buf[j] = serialAlphabet[n.Int64()]
		}
		segments = append(segments, string(buf))
	}
	return strings.Join(segments, "-"), nil
}

// IsGeneratedSerial reports whether serial has the generated format. Serials
// created by hand may use any format.
func IsGeneratedSerial(serial string) bool {
	return serialPattern.MatchString(serial)
}
