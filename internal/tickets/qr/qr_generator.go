package qr

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"

	"github.com/skip2/go-qrcode"

	"github.com/danbahadur2060/event/internal/models"
)

// QRGenerator renders gate-scannable codes. The ticket payload is AES
// encrypted so a code cannot be forged from a screenshot of another one.
type QRGenerator struct {
	secret []byte
}

func NewQRGenerator(secret string) *QRGenerator {
	hashed := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	return &QRGenerator{secret: hashed[:]}
}

func (q *QRGenerator) GenerateEncryptedQR(ticket models.IssuedTicket) ([]byte, error) {
	encrypted, err := q.EncryptPayload(ticket)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(encrypted, qrcode.Medium, 256)
}

// EncryptPayload produces the string embedded in the QR image.
func (q *QRGenerator) EncryptPayload(ticket models.IssuedTicket) (string, error) {
	ticket.QRCode = nil // payload must not contain itself
	data, err := json.Marshal(ticket)
	if err != nil {
		return "", err
	}
	return encryptAES(data, q.secret)
}

// Decrypt recovers the ticket payload from a scanned code's content.
func (q *QRGenerator) Decrypt(payload string) (*models.IssuedTicket, error) {
	plain, err := decryptAES(payload, q.secret)
	if err != nil {
		return nil, err
	}
	var ticket models.IssuedTicket
	if err := json.Unmarshal(plain, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func encryptAES(data []byte, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	ciphertext := make([]byte, aes.BlockSize+len(data))
	iv := ciphertext[:aes.BlockSize]

	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	stream := cipher.NewCFBEncrypter(block, iv)
	stream.XORKeyStream(ciphertext[aes.BlockSize:], data)

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func decryptAES(encoded string, key []byte) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < aes.BlockSize {
		return nil, io.ErrUnexpectedEOF
	}

	iv := ciphertext[:aes.BlockSize]
	data := make([]byte, len(ciphertext)-aes.BlockSize)

	stream := cipher.NewCFBDecrypter(block, iv)
	stream.XORKeyStream(data, ciphertext[aes.BlockSize:])

	return data, nil
}
