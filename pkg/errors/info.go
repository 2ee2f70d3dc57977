package errors

import (
	"fmt"
	"sort"
	"strings"
)

// InvalidIDsCause describes which identifiers were missing or malformed.
// The map holds the received value for every identifier the handler requires.
func InvalidIDsCause(received map[string]string) string {
	names := make([]string, 0, len(received))
	for name := range received {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("One or more properties were incomplete or not valid.\n")
	b.WriteString("List of required properties:")
	for _, name := range names {
		fmt.Fprintf(&b, "\n* %s: needs to be a valid identifier, received %q", name, received[name])
	}
	return b.String()
}

// CartIDCause describes an invalid cart identifier.
func CartIDCause(cartID string) string {
	return fmt.Sprintf("The cart id is not valid.\n* cid: needs to be a valid identifier, received %q", cartID)
}

// OwnershipCause describes a user trying to buy their own product.
func OwnershipCause(owner, email string) string {
	return fmt.Sprintf("Product owner: %s, User email: %s", owner, email)
}
