package eth

import (
	"fmt"
	"strings"
)

// challengeMessageTemplate is the text a wallet is asked to sign. The nonce
// and timestamp live inside the signed text itself, so a captured signature
// cannot be replayed against a different challenge.
const challengeMessageTemplate = `Welcome to ShillDAO!

Please sign this message to verify your wallet ownership. This signature will not trigger any blockchain transaction or cost any gas fees.

Verification Details:
- Nonce: %s
- Time: %d

This is a one-time security step to protect your account.`

// RenderChallengeMessage builds the exact message a wallet must sign for the
// given challenge and issue timestamp.
func RenderChallengeMessage(challenge string, issuedAt int64) string {
	return fmt.Sprintf(challengeMessageTemplate, challenge, issuedAt)
}

// MessagesEqual compares two challenge messages after trimming surrounding
// whitespace. Internal whitespace must match exactly: the wallet signs the
// rendered bytes, so any internal difference means a different signature.
func MessagesEqual(a, b string) bool {
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}
