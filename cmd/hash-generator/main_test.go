package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/phrazzld/receipt-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswords(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, hashPasswords(&out, bcrypt.MinCost, []string{"testpassword123", "тест1234"}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	for i, password := range []string{"testpassword123", "тест1234"} {
		fields := strings.Split(lines[i], "\t")
		require.Len(t, fields, 2)
		assert.Equal(t, password, fields[0])
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(fields[1]), []byte(password)))

		cost, err := bcrypt.Cost([]byte(fields[1]))
		require.NoError(t, err)
		assert.Equal(t, bcrypt.MinCost, cost)
	}
}

func TestHashPasswords_Rejects(t *testing.T) {
	tests := []struct {
		name      string
		cost      int
		passwords []string
		wantErr   error
		contains  string
	}{
		{name: "cost too low", cost: 3, passwords: []string{"longenough"}, contains: "cost must be between"},
		{name: "short password", cost: bcrypt.MinCost, passwords: []string{"short"}, wantErr: domain.ErrPasswordTooShort},
		{
			name:      "long password",
			cost:      bcrypt.MinCost,
			passwords: []string{strings.Repeat("a", domain.MaxPasswordLength+1)},
			wantErr:   domain.ErrPasswordTooLong,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			err := hashPasswords(&out, tc.cost, tc.passwords)
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
			if tc.contains != "" {
				assert.Contains(t, err.Error(), tc.contains)
			}
			assert.Empty(t, out.String())
		})
	}
}
