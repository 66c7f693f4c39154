package model

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

func NewOrderID() string { return "MVS" + strings.ToUpper(randomBase36(6)) }

func NewInvoiceID() string { return "INV-" + strings.ToUpper(randomBase36(5)) }

func NewProductID() string { return randomBase36(9) }

func randomBase36(n int) string {
	id := uuid.New()
	s := strconv.FormatUint(binary.BigEndian.Uint64(id[:8]), 36) +
		strconv.FormatUint(binary.BigEndian.Uint64(id[8:]), 36)
	for len(s) < n {
		s = "0" + s
	}
	return s[len(s)-n:]
}
