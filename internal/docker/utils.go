package docker

import "strings"

func isSecretKey(k string) bool {
	k = strings.ToUpper(k)
	return strings.Contains(k, "PASSWORD") ||
		strings.Contains(k, "TOKEN") ||
		strings.Contains(k, "SECRET") ||
		strings.Contains(k, "PRIVATE_KEY") ||
		k == "DOCKER_AUTH_CONFIG" ||
		k == "AWS_ACCESS_KEY_ID" ||
		k == "GOOGLE_APPLICATION_CREDENTIALS" ||
		k == "KUBECONFIG" ||
		k == "NPM_AUTH" ||
		k == "NPMRC"
}

// RedactBuildArgs masks the value of every --build-arg whose key looks secret.
func RedactBuildArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 0; i < len(out)-1; i++ {
		if out[i] != "--build-arg" {
			continue
		}
		if key, val, ok := strings.Cut(out[i+1], "="); ok && val != "" && isSecretKey(key) {
			out[i+1] = key + "=REDACTED"
		}
	}
	return out
}
