package session

import (
	"encoding/base64"
	"fmt"
	"os"
)

const (
	SecretEnvVar = "CORKBOARD_SESSION_SECRET"
)

// SecretFromEnv reads the base64-encoded signing secret from varname and
// scrubs the variable afterwards, so the secret does not linger in the
// process environment. A missing or undersized secret is a startup
// failure, not something to limp along without.
func SecretFromEnv(varname string, getfn func(string) string, setfn func(string, string) error) ([]byte, error) {
	if getfn == nil {
		getfn = os.Getenv
	}
	if setfn == nil {
		setfn = os.Setenv
	}
	val := getfn(varname)
	setfn(varname, "")
	if len(val) == 0 {
		return nil, fmt.Errorf("session: environment variable %v does not contain a secret", varname)
	}
	secret, err := base64.StdEncoding.DecodeString(val)
	if err != nil {
		return nil, fmt.Errorf("session: cannot decode string to a valid secret, cause %v", err)
	} else if len(secret) < MinSecretLen {
		return nil, fmt.Errorf("session: decoded secret too short got %v expecting %v bytes", len(secret), MinSecretLen)
	}
	return secret, nil
}
