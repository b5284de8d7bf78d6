package events

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/mmynk/escrowd/internal/models"
)

// ChainHash links ev to the event before it in the log:
//
//	BLAKE2b-256(prev || seq || session_id || len(kind) || kind || payload)
//
// seq is 8 bytes big-endian, session_id the 16 raw UUID bytes and len(kind) a
// uvarint, so no two distinct events encode to the same input. The chain runs
// across the whole log; the first event has an empty prev.
func ChainHash(prev []byte, ev *models.Event) []byte {
	h, _ := blake2b.New256(nil)
	h.Write(prev)

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(ev.Seq))
	h.Write(buf[:])
	h.Write(ev.SessionID[:])

	kind := []byte(ev.Kind)
	h.Write(binary.AppendUvarint(nil, uint64(len(kind))))
	h.Write(kind)
	h.Write(ev.Payload)
	return h.Sum(nil)
}

// VerifyChain checks that a contiguous run of events links correctly.
// prev is the hash preceding the first event (nil when starting from the head).
func VerifyChain(prev []byte, evs []*models.Event) error {
	for _, ev := range evs {
		if !bytes.Equal(ev.PrevHash, prev) {
			return fmt.Errorf("event %d: prev hash does not match predecessor", ev.Seq)
		}
		if want := ChainHash(prev, ev); !bytes.Equal(ev.Hash, want) {
			return fmt.Errorf("event %d: hash does not match contents", ev.Seq)
		}
		prev = ev.Hash
	}
	return nil
}
