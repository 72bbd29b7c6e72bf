// ABOUTME: Parser for OAuth redirect locations
// ABOUTME: Classifies a raw URL as fragment token, authorization code, provider error or nothing

package auth

import (
	"net/url"
	"strings"
)

// TokenMarker prefixes a credential delivered in the URL fragment.
const TokenMarker = "token="

// Kind tags what a redirect location carries.
type Kind int

const (
	KindNone Kind = iota
	KindCode
	KindError
	KindFragmentToken
)

func (k Kind) String() string {
	switch k {
	case KindCode:
		return "code"
	case KindError:
		return "error"
	case KindFragmentToken:
		return "fragment-token"
	default:
		return "none"
	}
}

// Pending is the work a redirect location asks for.
type Pending struct {
	Kind  Kind
	Value string
}

// ParseLocation classifies raw. A fragment token wins over query
// parameters, and a provider error wins over a code.
func ParseLocation(raw string) Pending {
	base, fragment, hasFragment := strings.Cut(raw, "#")

	if hasFragment && strings.HasPrefix(fragment, TokenMarker) {
		token, err := url.PathUnescape(strings.TrimPrefix(fragment, TokenMarker))
		if err != nil {
			return Pending{Kind: KindError, Value: "malformed token fragment"}
		}
		if token == "" {
			return Pending{Kind: KindNone}
		}
		return Pending{Kind: KindFragmentToken, Value: token}
	}

	_, rawQuery, _ := strings.Cut(base, "?")
	params, err := url.ParseQuery(rawQuery)
	if err != nil && len(params) == 0 {
		return Pending{Kind: KindNone}
	}

	code := params.Get("code")
	providerErr := params.Get("error")
	switch {
	case code == "" && providerErr == "":
		return Pending{Kind: KindNone}
	case providerErr != "":
		return Pending{Kind: KindError, Value: providerErr}
	default:
		return Pending{Kind: KindCode, Value: code}
	}
}

// StripCallback returns raw without its query and fragment.
func StripCallback(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		return raw[:i]
	}
	return raw
}
