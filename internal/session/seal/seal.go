// seal — шифрование сессии на диске.
//
// Токен и профиль хранятся в локальном SQLite-файле устройства; файл может
// утечь вместе с бэкапом, поэтому значения запечатываются XChaCha20-Poly1305.
// Ключ — 32 байта в hex из конфигурации (per-device секрет).
package seal

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

var (
	// ErrInvalidKey — ключ не hex или не 32 байта.
	ErrInvalidKey = errors.New("seal: invalid key")
	// ErrCorrupted — шифртекст повреждён или запечатан другим ключом.
	ErrCorrupted = errors.New("seal: ciphertext corrupted")
)

// Sealer запечатывает и распечатывает строковые значения.
type Sealer struct {
	key []byte
}

// New создаёт Sealer из hex-ключа (64 hex-символа = 32 байта).
func New(keyHex string) (*Sealer, error) {
	const op = "seal.New"

	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidKey)
	}

	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidKey)
	}

	return &Sealer{key: key}, nil
}

// Seal шифрует значение; формат вывода — base64(nonce || ciphertext || tag).
func (s *Sealer) Seal(plain string) (string, error) {
	const op = "seal.Seal"

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	out := aead.Seal(nonce, nonce, []byte(plain), nil)

	return base64.RawStdEncoding.EncodeToString(out), nil
}

// Open распечатывает значение, запечатанное Seal.
func (s *Sealer) Open(sealed string) (string, error) {
	const op = "seal.Open"

	raw, err := base64.RawStdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrCorrupted)
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if len(raw) < aead.NonceSize() {
		return "", fmt.Errorf("%s: %w", op, ErrCorrupted)
	}

	nonce, ct := raw[:aead.NonceSize()], raw[aead.NonceSize():]

	plain, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrCorrupted)
	}

	return string(plain), nil
}
