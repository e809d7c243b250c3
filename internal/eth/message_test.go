package eth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderChallengeMessage(t *testing.T) {
	msg := RenderChallengeMessage("a1b2c3d4e5f6a7b8a1b2c3d4e5f6a7b8", 1700000000)

	assert.Contains(t, msg, "- Nonce: a1b2c3d4e5f6a7b8a1b2c3d4e5f6a7b8")
	assert.Contains(t, msg, "- Time: 1700000000")
	assert.True(t, strings.HasPrefix(msg, "Welcome to ShillDAO!"))
}

func TestRenderChallengeMessageDeterministic(t *testing.T) {
	a := RenderChallengeMessage("deadbeef", 42)
	b := RenderChallengeMessage("deadbeef", 42)
	require.Equal(t, a, b)
}

func TestMessagesEqualRoundTrip(t *testing.T) {
	msg := RenderChallengeMessage("deadbeefdeadbeefdeadbeefdeadbeef", 1700000000)

	assert.True(t, MessagesEqual(msg, msg))
	assert.True(t, MessagesEqual(msg, "\n  "+msg+"\t\n"), "surrounding whitespace is trimmed")
}

func TestMessagesEqualDetectsTampering(t *testing.T) {
	msg := RenderChallengeMessage("deadbeefdeadbeefdeadbeefdeadbeef", 1700000000)

	// Any single-character mutation must be detected.
	for _, i := range []int{0, len(msg) / 2, len(msg) - 1} {
		mutated := []byte(msg)
		mutated[i] ^= 0x01
		assert.False(t, MessagesEqual(msg, string(mutated)), "mutation at %d", i)
	}

	// Internal whitespace is significant.
	assert.False(t, MessagesEqual(msg, strings.Replace(msg, "\n\n", "\n", 1)))
}
