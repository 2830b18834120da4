package service

import (
	"crypto/rand"
	"math/big"
	"regexp"
)

const (
	bookingRefPrefix   = "RST-"
	bookingRefAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	bookingRefLength   = 6
)

var bookingRefPattern = regexp.MustCompile(`^RST-[A-Z0-9]{6}$`)

// NewBookingRef returns a reference like RST-7K2Q9D.
func NewBookingRef() string {
	buf := make([]byte, bookingRefLength)
	max := big.NewInt(int64(len(bookingRefAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		buf[i] = bookingRefAlphabet[n.Int64()]
	}
	return bookingRefPrefix + string(buf)
}

func IsBookingRef(s string) bool {
	return bookingRefPattern.MatchString(s)
}
