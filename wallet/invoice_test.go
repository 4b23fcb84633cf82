package wallet

import "testing"

func TestInvoiceAmountInvalid(t *testing.T) {
	if _, err := InvoiceAmount("not a real invoice"); err == nil {
		t.Error("expected an error decoding a malformed invoice")
	}
}
