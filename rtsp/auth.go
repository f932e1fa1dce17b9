package rtsp

import (
	"crypto/md5" //nolint:gosec
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/rand"
	"strings"
)

// Scheme is the authentication scheme offered by a challenge. The set
// is closed: RTSP servers offer Basic or Digest, nothing else.
type Scheme uint8

const (
	SchemeBasic Scheme = iota
	SchemeDigest
)

func (s Scheme) String() string {
	if s == SchemeBasic {
		return "Basic"
	}
	return "Digest"
}

// Challenge holds the parameters of a WWW-Authenticate header. It is
// created from one 401 response, consumed to build exactly one
// authenticated request, then discarded.
type Challenge struct {
	Scheme    Scheme
	Realm     string
	Nonce     string
	Opaque    string
	QOP       string
	Algorithm string // empty means the scheme default (MD5)
}

// ParseChallenge parses a WWW-Authenticate header value. An empty or
// unrecognized scheme is an error; a Digest challenge without realm or
// nonce is an error.
func ParseChallenge(header string) (*Challenge, error) {
	trimmed := strings.TrimSpace(header)
	lower := strings.ToLower(trimmed)
	switch {
	case strings.HasPrefix(lower, "basic"):
		return &Challenge{Scheme: SchemeBasic}, nil
	case strings.HasPrefix(lower, "digest"):
		params := parseAuthParams(trimmed[len("digest"):])
		c := &Challenge{
			Scheme:    SchemeDigest,
			Realm:     params["realm"],
			Nonce:     params["nonce"],
			Opaque:    params["opaque"],
			QOP:       params["qop"],
			Algorithm: params["algorithm"],
		}
		if c.Realm == "" || c.Nonce == "" {
			return nil, fmt.Errorf("digest challenge missing realm or nonce")
		}
		return c, nil
	case trimmed == "":
		return nil, fmt.Errorf("empty WWW-Authenticate header")
	default:
		scheme := strings.Fields(trimmed)[0]
		return nil, fmt.Errorf("unsupported authentication scheme %q", scheme)
	}
}

// parseAuthParams extracts key=value pairs from a challenge parameter
// list, stripping surrounding quotes.
func parseAuthParams(s string) map[string]string {
	params := make(map[string]string)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		eq := strings.IndexByte(part, '=')
		if eq <= 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(part[:eq]))
		val := strings.Trim(strings.TrimSpace(part[eq+1:]), `"`)
		params[key] = val
	}
	return params
}

// Authorization builds the Authorization header value answering the
// challenge for the given credential, method and request URI.
func (c *Challenge) Authorization(cred Credential, method, uri string) (string, error) {
	if c.Scheme == SchemeBasic {
		encoded := base64.StdEncoding.EncodeToString([]byte(cred.Username + ":" + cred.Password))
		return "Basic " + encoded, nil
	}
	return c.digestAuthorization(cred, method, uri)
}

func (c *Challenge) digestAuthorization(cred Credential, method, uri string) (string, error) {
	hash, err := hashFunc(c.Algorithm)
	if err != nil {
		return "", err
	}

	ha1 := hash(cred.Username + ":" + c.Realm + ":" + cred.Password)
	ha2 := hash(method + ":" + uri)

	var response string
	useQOP := strings.Contains(c.QOP, "auth")
	cnonce := newCnonce()
	const nc = "00000001"
	if useQOP {
		response = hash(ha1 + ":" + c.Nonce + ":" + nc + ":" + cnonce + ":auth:" + ha2)
	} else {
		response = hash(ha1 + ":" + c.Nonce + ":" + ha2)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `Digest username="%s", realm="%s", nonce="%s", uri="%s", response="%s"`,
		cred.Username, c.Realm, c.Nonce, uri, response)
	if c.Algorithm != "" {
		fmt.Fprintf(&b, `, algorithm=%s`, c.Algorithm)
	}
	if useQOP {
		fmt.Fprintf(&b, `, qop=auth, nc=%s, cnonce="%s"`, nc, cnonce)
	}
	if c.Opaque != "" {
		fmt.Fprintf(&b, `, opaque="%s"`, c.Opaque)
	}
	return b.String(), nil
}

// hashFunc maps a challenge algorithm name to a hex-digest function.
// MD5 is the historical default for this scheme.
func hashFunc(algorithm string) (func(string) string, error) {
	switch strings.ToUpper(algorithm) {
	case "", "MD5":
		return md5hex, nil
	case "SHA-256":
		return sha256hex, nil
	default:
		return nil, fmt.Errorf("unsupported digest algorithm %q", algorithm)
	}
}

func md5hex(s string) string {
	sum := md5.Sum([]byte(s)) //nolint:gosec
	return fmt.Sprintf("%x", sum)
}

func sha256hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", sum)
}

// newCnonce generates the client nonce. A variable so tests can pin it.
var newCnonce = func() string {
	return fmt.Sprintf("%08x", rand.Uint32()) //nolint:gosec
}
