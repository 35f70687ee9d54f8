// Package idgen generates lexicographically-sortable identifiers for nodes
// and edges created by INSERT. The encoding is the L85 scheme used
// throughout the teacher's storage layer for entity identities: a
// base85 variant over an alphabet chosen so that byte-order comparison of
// the hash matches character-order comparison of the encoded string.
package idgen

import (
	"crypto/rand"
	"crypto/sha1"
	"encoding/binary"
	"sync/atomic"
	"time"
)

// alphabet is ordered so that strings.Compare on the encoded output agrees
// with byte-order comparison of the source bytes.
const alphabet = "!$%&()+,-./" +
	"0123456789:;<=>@" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ[]_`" +
	"abcdefghijklmnopqrstuvwxyz{}"

// EncodeL85 encodes bytes to the sortable base85 form.
func EncodeL85(src []byte) string {
	if len(src) == 0 {
		return ""
	}
	result := make([]byte, 0, len(src)*5/4+5)
	for i := 0; i+4 <= len(src); i += 4 {
		v := uint32(src[i])<<24 | uint32(src[i+1])<<16 | uint32(src[i+2])<<8 | uint32(src[i+3])
		var chars [5]byte
		for j := 4; j >= 0; j-- {
			chars[j] = alphabet[v%85]
			v /= 85
		}
		result = append(result, chars[:]...)
	}
	remainder := len(src) % 4
	if remainder > 0 {
		var padded [4]byte
		copy(padded[:], src[len(src)-remainder:])
		v := uint32(padded[0])<<24 | uint32(padded[1])<<16 | uint32(padded[2])<<8 | uint32(padded[3])
		var chars [5]byte
		for j := 4; j >= 0; j-- {
			chars[j] = alphabet[v%85]
			v /= 85
		}
		result = append(result, chars[:remainder+1]...)
	}
	return string(result)
}

// seq disambiguates identifiers minted within the same nanosecond.
var seq uint32

// New mints a fresh node/edge identifier: a SHA-1 digest of the current
// nanosecond timestamp, a per-process counter and 8 bytes of randomness,
// encoded with EncodeL85. The digest is not ordered by creation time, so
// the lexicographic order of identifiers does not follow insertion order.
func New() string {
	n := atomic.AddUint32(&seq, 1)
	var buf [20]byte
	binary.BigEndian.PutUint64(buf[:8], uint64(time.Now().UnixNano()))
	binary.BigEndian.PutUint32(buf[8:12], n)
	rand.Read(buf[12:])
	h := sha1.Sum(buf[:])
	return EncodeL85(h[:])
}
