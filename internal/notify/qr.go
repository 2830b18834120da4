package notify

import (
	"github.com/skip2/go-qrcode"
)

// GenerateQRCode 產生 PNG 格式的 QR code
func GenerateQRCode(content string, size int) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, size)
}
