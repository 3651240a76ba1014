package ptrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeU64RoundTrip(t *testing.T) {
	values := []uint64{0, 1, 0xFF, 0xDEADBEEFCAFEBABE, 1 << 63}
	for _, v := range values {
		var buf [8]byte
		putLeU64(buf[:], v)
		assert.Equal(t, v, leU64(buf[:]))
	}
}

func TestPutLeU64IsLittleEndian(t *testing.T) {
	var buf [8]byte
	putLeU64(buf[:], 0x0102030405060708)
	assert.Equal(t, [8]byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}, buf)
}

// TestLaunchAndBreakpointRoundTrip launches a tracee, breaks at main,
// continues past the trap, and observes exit. It requires an actual
// compiled, statically-linked ELF binary on PATH and CAP_SYS_PTRACE,
// neither of which this environment provides, so it is skipped outside
// of a manually-prepared environment.
func TestLaunchAndBreakpointRoundTrip(t *testing.T) {
	t.Skip("requires a real compiled ELF binary and ptrace capability; exercised manually, not in CI")
}
