package launch

import (
	"fmt"
	"strings"
)

// EnvJavaHome is set for the child to the runtime home.
const EnvJavaHome = "JAVA_HOME"

// BuildEnv derives the child environment from base: every key in strip is
// removed and JAVA_HOME points at javaHome when it is non-empty.
func BuildEnv(base []string, strip []string, javaHome string) []string {
	env := append([]string(nil), base...)
	for _, key := range strip {
		env = UnsetEnv(env, key)
	}
	if javaHome != "" {
		env = mergeEnv(env, map[string]string{EnvJavaHome: javaHome})
	}
	return env
}

// GetEnv returns the value for the key from an env slice.
func GetEnv(env []string, key string) (string, bool) {
	for _, entry := range env {
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) == 2 && parts[0] == key {
			return parts[1], true
		}
	}
	return "", false
}

// SetEnv sets or appends a key=value entry in an env slice.
func SetEnv(env []string, key string, value string) []string {
	entry := fmt.Sprintf("%s=%s", key, value)
	for i, existing := range env {
		if strings.HasPrefix(existing, key+"=") {
			env[i] = entry
			return env
		}
	}
	return append(env, entry)
}

// UnsetEnv removes all entries for the given key from an env slice.
// If key is empty, it returns env unchanged.
func UnsetEnv(env []string, key string) []string {
	if key == "" {
		return env
	}
	prefix := key + "="
	result := make([]string, 0, len(env))
	for _, entry := range env {
		if !strings.HasPrefix(entry, prefix) {
			result = append(result, entry)
		}
	}
	return result
}

func mergeEnv(base []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return base
	}
	for key, value := range overrides {
		base = SetEnv(base, key, value)
	}
	return base
}
