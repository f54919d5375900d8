package kitchen

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

type QREncoder struct {
	Size int
}

func (e QREncoder) Encode(content string) ([]byte, error) {
	size := e.Size
	if size == 0 {
		size = 256
	}
	return qrcode.Encode(content, qrcode.Medium, size)
}

func TicketURL(baseURL string, id int64) string {
	return fmt.Sprintf("%s/kitchen-orders/%d", baseURL, id)
}
