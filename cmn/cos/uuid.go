// Package cos provides common low-level types and utilities shared by the
// channel, launcher, registry, and housekeeper packages.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"strconv"

	"github.com/OneOfOne/xxhash"
	"github.com/teris-io/shortid"
)

const uuidABC = "-5nZJDft6LuzsjGNpPwY7rQa39vehq4i1cV2FROo8yHSlC0BUEdWbIxMmTgKXAk_"

const seedMLCG32 = 0x811c9dc5

var sid *shortid.Shortid

func init() {
	sid = shortid.MustNew(4 /*worker*/, uuidABC, seedMLCG32)
}

// GenUUID generates a short, unique session id. Logged (not part of any
// wire/name contract) so that a controller's and a child's log lines for the
// same handshake can be correlated by eye.
func GenUUID() string { return sid.MustGenerate() }

// Fingerprint returns a short, stable, human-loggable hash of a channel name.
// Purely a diagnostic aid: it never participates in derived object-name
// construction, which must remain the exact strings in the naming contract.
func Fingerprint(name string) string {
	digest := xxhash.Checksum64S([]byte(name), seedMLCG32)
	return strconv.FormatUint(digest, 36)
}
