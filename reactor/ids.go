package reactor

import (
	"strconv"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

var idSequence int64

// nextID derives a numeric identity for a newly-created node from its name
// and a process-wide sequence number, the same way the teacher's
// SYMBOL_ERRORS constant is derived from hashing a fixed string: hash a
// string key through xxhash and mask off the sign bit so ids are always
// non-negative int64s.
func nextID(name string) int64 {
	seq := atomic.AddInt64(&idSequence, 1)
	key := name + "#" + strconv.FormatInt(seq, 10)
	return int64(xxhash.Sum64String(key) & 0x7fffffffffffffff)
}
