package wallet

import (
	"fmt"

	decodepay "github.com/nbd-wtf/ln-decodepay"
)

// InvoiceAmount returns the sat amount encoded in a bolt11 invoice, so
// a caller can decide how much to melt without trusting a
// caller-supplied amount. See spec §6 invoiceAmount.
func InvoiceAmount(invoice string) (uint64, error) {
	bolt11, err := decodepay.Decodepay(invoice)
	if err != nil {
		return 0, fmt.Errorf("invalid invoice: %w", err)
	}
	if bolt11.MSatoshi == 0 {
		return 0, fmt.Errorf("invoice has no amount")
	}
	return uint64(bolt11.MSatoshi) / 1000, nil
}
