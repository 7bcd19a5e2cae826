// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/helphub/internal/platform/sec"
)

/*
TestGenerateSecureToken checks length, encoding and uniqueness.
*/
func TestGenerateSecureToken(t *testing.T) {
	first, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)
	second, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)

	assert.Len(t, first, 64)
	_, err = hex.DecodeString(first)
	assert.NoError(t, err)
	assert.NotEqual(t, first, second)
}

/*
TestHashToken is deterministic and does not echo the token.
*/
func TestHashToken(t *testing.T) {
	token := "a1b2c3"

	assert.Equal(t, sec.HashToken(token), sec.HashToken(token))
	assert.NotEqual(t, token, sec.HashToken(token))
	assert.Len(t, sec.HashToken(token), 64)
}
