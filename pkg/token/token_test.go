package token_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocemtechies/memberhub/pkg/token"
)

type payload struct {
	Subject string `json:"sub"`
	Email   string `json:"eml"`
	Issued  int64  `json:"iat"`
}

func TestGenerateAndParse(t *testing.T) {
	t.Parallel()

	original := payload{Subject: "email_verify", Email: "member@example.com", Issued: 1700000000}

	tok, err := token.Generate(original, "secret-one")
	require.NoError(t, err)
	assert.Contains(t, tok, ".")

	parsed, err := token.Parse[payload](tok, "secret-one")
	require.NoError(t, err)
	assert.Equal(t, original, parsed)
}

func TestParse_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := token.Generate(payload{Subject: "x"}, "secret-one")
	require.NoError(t, err)

	_, err = token.Parse[payload](tok, "secret-two")
	assert.ErrorIs(t, err, token.ErrSignatureInvalid)
}

func TestParse_TamperedPayload(t *testing.T) {
	t.Parallel()

	tok, err := token.Generate(payload{Subject: "x"}, "secret-one")
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 2)
	tampered := parts[0] + "x." + parts[1]

	_, err = token.Parse[payload](tampered, "secret-one")
	assert.Error(t, err)
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "no-dot", "a.b.c", "!!!.???"} {
		_, err := token.Parse[payload](input, "secret-one")
		assert.Error(t, err, input)
	}
}
