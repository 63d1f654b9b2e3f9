package security

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey(t *testing.T) {
	decoded := bytes.Repeat([]byte{0x42}, 32)

	tests := []struct {
		name     string
		secret   string
		material []byte
		wantErr  error
	}{
		{
			name:     "base64 secret is decoded",
			secret:   base64.StdEncoding.EncodeToString(decoded),
			material: decoded,
		},
		{
			name:     "unpadded base64 secret is decoded",
			secret:   base64.RawStdEncoding.EncodeToString(decoded),
			material: decoded,
		},
		{
			name:     "raw passphrase that is not base64",
			secret:   "my-super-secret-passphrase-for-hs256!",
			material: []byte("my-super-secret-passphrase-for-hs256!"),
		},
		{
			name:    "empty secret",
			secret:  "",
			wantErr: ErrSecretMissing,
		},
		{
			name:    "blank secret",
			secret:  "   \t",
			wantErr: ErrSecretMissing,
		},
		{
			name:    "short raw secret",
			secret:  "short!",
			wantErr: ErrSecretTooShort,
		},
		{
			// 32 символа, но это валидный base64 и декодируется в 24 байта
			name:    "raw-looking secret that decodes as base64",
			secret:  "abcdabcdabcdabcdabcdabcdabcdabcd",
			wantErr: ErrSecretTooShort,
		},
		{
			name:    "base64 of 31 bytes",
			secret:  base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, 31)),
			wantErr: ErrSecretTooShort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := DeriveKey(tt.secret)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, key.IsZero())

				var configErr *ConfigError
				assert.ErrorAs(t, err, &configErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.material, key.bytes())
		})
	}
}

func TestMustDeriveKey_Panics(t *testing.T) {
	assert.Panics(t, func() { MustDeriveKey("") })
}
