package rtsp

import "fmt"

// Credential is one username/password candidate pair.
type Credential struct {
	Username string
	Password string
}

// OutcomeKind classifies the result of a single probe.
type OutcomeKind uint8

const (
	// CredentialValid means the endpoint accepted the credential, or
	// answered the unauthenticated request with success, meaning no
	// auth is required at all.
	CredentialValid OutcomeKind = iota
	// CredentialInvalid means the endpoint rejected the credential.
	// This is a normal outcome of a wrong guess, not an error.
	CredentialInvalid
	// NetworkError covers connect failures, resets and timeouts.
	NetworkError
	// ProtocolError covers unparseable responses, unexpected status
	// codes and unsupported authentication schemes.
	ProtocolError
)

func (k OutcomeKind) String() string {
	switch k {
	case CredentialValid:
		return "valid"
	case CredentialInvalid:
		return "invalid"
	case NetworkError:
		return "network-error"
	case ProtocolError:
		return "protocol-error"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", k)
	}
}

// Outcome is the result of one (target, credential) probe. Exactly one
// Outcome is produced per probe invocation.
type Outcome struct {
	Kind   OutcomeKind
	Reason string // set for NetworkError and ProtocolError
}

func networkError(err error) Outcome {
	return Outcome{Kind: NetworkError, Reason: err.Error()}
}

func protocolError(format string, args ...interface{}) Outcome {
	return Outcome{Kind: ProtocolError, Reason: fmt.Sprintf(format, args...)}
}
