package model

import (
	"crypto/rand"
	"encoding/hex"
)

// NewModelID returns a random `mod_` + 16 lowercase hex chars model
// identifier, drawn from 12 random bytes (spec §4.1 normalisation step 1).
func NewModelID() string {
	var buf [12]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand.Read only fails if the OS entropy source is broken;
		// there is no sane recovery, so surface it the way the stdlib
		// itself documents (panic is the accepted practice for this call).
		panic("model: crypto/rand unavailable: " + err.Error())
	}
	return "mod_" + hex.EncodeToString(buf[:])[:16]
}
