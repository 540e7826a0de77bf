package v1

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"runtime"
	"strings"
)

// DeviceFingerprint derives a stable device id from the host name and
// platform. It identifies a machine, not a user.
func DeviceFingerprint() (string, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return "", err
	}
	return fingerprint(hostname, runtime.GOOS, runtime.GOARCH), nil
}

func fingerprint(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
