// Package wallet implements the client-side core of a single-mint Cashu
// wallet: blinding outputs, unblinding promises into proofs, selecting
// and splitting proofs to pay an exact amount, and receiving/cleaning
// tokens from other wallets. See spec §4.6.
package wallet

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/satbag/cashuwallet/cashu"
	"github.com/satbag/cashuwallet/cashu/nuts/nut03"
	"github.com/satbag/cashuwallet/cashu/nuts/nut05"
	"github.com/satbag/cashuwallet/crypto"
)

// Wallet wraps a single mint's keyset plus the RPC and persistence
// capabilities spec §4.6 scopes it to. A Wallet is safe for concurrent
// use: every exported operation serializes on mu, per spec §5 — this
// is a single-threaded cooperative state machine, not a concurrent one.
type Wallet struct {
	mu sync.Mutex

	mintURL string
	keys    crypto.MintKeySet
	client  MintClient
	pending PendingStore
	logger  *slog.Logger

	// clientForMint builds a MintClient for a mint other than mintURL,
	// used only by Receive when a token entry names a foreign mint.
	// Defaults to constructing an HTTPClient.
	clientForMint func(mintURL string) MintClient
}

func NewWallet(cfg Config) (*Wallet, error) {
	if cfg.MintURL == "" {
		return nil, fmt.Errorf("wallet: MintURL is required")
	}

	client := cfg.Client
	if client == nil {
		client = NewHTTPClient(cfg.MintURL)
	}

	pending := cfg.Pending
	if pending == nil {
		pending = newMemPendingStore()
	}

	return &Wallet{
		mintURL:       cfg.MintURL,
		keys:          cfg.Keys,
		client:        client,
		pending:       pending,
		logger:        cfg.logger(),
		clientForMint: cfg.ClientForMint,
	}, nil
}

// PayResult is the outcome of PayLightningInvoice: whether the mint
// reports the invoice paid, the payment preimage if any, and unblinded
// change proofs from unused fee-reserve blank outputs.
type PayResult struct {
	IsPaid   bool
	Preimage string
	Change   cashu.Proofs
}

// RequestTokens redeems a mint quote for amount sats: it blinds one
// output per entry of AmountSplit(amount), posts them against hash, and
// unblinds the mint's promises into proofs. See spec §4.6 requestTokens.
func (w *Wallet) RequestTokens(ctx context.Context, amount uint64, hash string) (cashu.Proofs, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	outputs, secrets, rs, err := w.createBlindedMessages(cashu.AmountSplit(amount))
	if err != nil {
		return nil, err
	}

	opID := "mint:" + hash
	if err := w.pending.Save(PendingOperation{ID: opID, Kind: "mint", Outputs: outputs, Secrets: secrets, Rs: rs}); err != nil {
		w.logger.Warn("failed to persist pending mint operation", "error", err)
	}

	w.logger.Info("requesting mint", "amount", amount, "mint", w.mintURL, "keyset", w.keys.Id, "hash", hash)
	promises, err := w.client.Mint(ctx, outputs, hash)
	if err != nil {
		w.logger.Error("mint request failed", "amount", amount, "mint", w.mintURL, "error", err)
		return nil, err
	}

	proofs, err := constructProofs(promises, rs, secrets, &w.keys)
	if err != nil {
		return nil, err
	}

	if err := w.pending.Delete(opID); err != nil {
		w.logger.Warn("failed to clear pending mint operation", "error", err)
	}
	w.logger.Info("minted tokens", "amount", proofs.Amount(), "mint", w.mintURL, "keyset", w.keys.Id)
	return proofs, nil
}

// Send selects proofs to cover amount from the wallet-supplied proofs,
// taking them greedily in input order until their sum reaches amount,
// and splits via the mint if that sum overshoots. Other subsets that
// would sum to amount exactly are not searched. It returns the
// proofs to hand to the recipient and the change to keep. See spec §4.6
// send and the split-ordering contract in invariant 6.
func (w *Wallet) Send(ctx context.Context, amount uint64, proofs cashu.Proofs) (send cashu.Proofs, change cashu.Proofs, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var proofsToSend cashu.Proofs
	var sum uint64
	for _, p := range proofs {
		if sum >= amount {
			change = append(change, p)
			continue
		}
		proofsToSend = append(proofsToSend, p)
		sum += p.Amount
	}

	if sum < amount {
		return nil, nil, cashu.ErrInsufficientFunds
	}
	if sum == amount {
		return proofsToSend, change, nil
	}

	w.logger.Info("sending", "amount", amount, "mint", w.mintURL, "keyset", w.keys.Id)
	kept, sent, err := w.split(ctx, sum-amount, amount, proofsToSend, &w.keys, w.client)
	if err != nil {
		return nil, nil, err
	}
	return sent, append(kept, change...), nil
}

// Receive decodes and cleans an encoded token, then runs each token
// entry through a split against its own mint to redeem it into fresh
// proofs this wallet can spend. Entries that fail (unreachable mint,
// already-spent proofs) are returned in tokensWithErrors rather than
// failing the whole call, so a multi-mint token can partially succeed.
func (w *Wallet) Receive(ctx context.Context, encodedToken string) (received cashu.Proofs, tokensWithErrors *cashu.Token, err error) {
	token, err := cashu.DecodeToken(encodedToken)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", cashu.ErrMalformedToken, err)
	}
	cleaned := cashu.CleanToken(token)

	w.mu.Lock()
	defer w.mu.Unlock()

	keysetCache := map[string]*crypto.MintKeySet{w.mintURL: &w.keys}

	var errored []cashu.TokenEntry
	for _, entry := range cleaned.Token {
		w.logger.Info("receiving token entry", "amount", entry.Proofs.Amount(), "mint", entry.Mint)

		keyset, client, err := w.keysetForMint(ctx, entry.Mint, keysetCache)
		if err != nil {
			w.logger.Error("failed to resolve mint keyset", "mint", entry.Mint, "error", err)
			errored = append(errored, entry)
			continue
		}

		proofs, err := w.receiveTokenEntry(ctx, entry, keyset, client)
		if err != nil {
			w.logger.Error("failed to redeem token entry", "mint", entry.Mint, "error", err)
			errored = append(errored, entry)
			continue
		}
		received = append(received, proofs...)
	}

	if len(errored) > 0 {
		tokensWithErrors = &cashu.Token{Token: errored}
	}
	return received, tokensWithErrors, nil
}

// receiveTokenEntry redeems one token entry's proofs wholesale via a
// split where amount1 (kept) is 0 and amount2 (sent, i.e. received) is
// the entry's full value. amount1=0 means createBlindedMessages(nil)
// produces no outputs on that side, which is intentional: there is
// nothing to "keep" when receiving, the entire value moves to fresh
// proofs on the receive side. See spec §9.
func (w *Wallet) receiveTokenEntry(ctx context.Context, entry cashu.TokenEntry, keyset *crypto.MintKeySet, client MintClient) (cashu.Proofs, error) {
	total := entry.Proofs.Amount()
	_, received, err := w.split(ctx, 0, total, entry.Proofs, keyset, client)
	return received, err
}

// split carries out the two-sided swap: proofsToSend is consumed by the
// mint and amount1+amount2 worth of fresh blinded outputs come back as
// promises. The outputs MUST be submitted amount1-then-amount2 in one
// contiguous slice — the mint's {fst, snd} response is positional, not
// tagged, so reordering silently swaps which proofs are "kept" and
// which are "sent". See spec invariant 6.
func (w *Wallet) split(ctx context.Context, amount1, amount2 uint64, proofsToSend cashu.Proofs, keyset *crypto.MintKeySet, client MintClient) (kept cashu.Proofs, sent cashu.Proofs, err error) {
	out1, sec1, r1, err := w.createBlindedMessagesFor(keyset, cashu.AmountSplit(amount1))
	if err != nil {
		return nil, nil, err
	}
	out2, sec2, r2, err := w.createBlindedMessagesFor(keyset, cashu.AmountSplit(amount2))
	if err != nil {
		return nil, nil, err
	}

	outputs := make(cashu.BlindedMessages, 0, len(out1)+len(out2))
	outputs = append(outputs, out1...)
	outputs = append(outputs, out2...)
	secrets := append(append([]string{}, sec1...), sec2...)
	rs := append(append([]*secp256k1.PrivateKey{}, r1...), r2...)

	opID, err := generateOperationID()
	if err != nil {
		return nil, nil, err
	}
	if err := w.pending.Save(PendingOperation{ID: opID, Kind: "split", Outputs: outputs, Secrets: secrets, Rs: rs}); err != nil {
		w.logger.Warn("failed to persist pending split operation", "error", err)
	}

	w.logger.Info("requesting split", "keep", amount1, "send", amount2, "keyset", keyset.Id)
	resp, err := client.Split(ctx, nut03.PostSplitRequest{
		Proofs:  proofsToSend,
		Amount:  amount2,
		Outputs: outputs,
	})
	if err != nil {
		w.logger.Error("split request failed", "keep", amount1, "send", amount2, "keyset", keyset.Id, "error", err)
		return nil, nil, err
	}

	kept, err = constructProofs(resp.Fst, r1, sec1, keyset)
	if err != nil {
		return nil, nil, err
	}
	sent, err = constructProofs(resp.Snd, r2, sec2, keyset)
	if err != nil {
		return nil, nil, err
	}

	if err := w.pending.Delete(opID); err != nil {
		w.logger.Warn("failed to clear pending split operation", "error", err)
	}
	return kept, sent, nil
}

// PayLightningInvoice melts proofsToSend to pay invoice. If feeReserve
// is nil, the wallet asks the mint via CheckFees. It attaches
// blankOutputCount(feeReserve) blank outputs so the mint can return
// unused fee reserve as change. See spec §4.6 payLightningInvoice.
func (w *Wallet) PayLightningInvoice(ctx context.Context, invoice string, proofsToSend cashu.Proofs, feeReserve *uint64) (PayResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	fee, err := w.resolveFeeReserve(ctx, invoice, feeReserve)
	if err != nil {
		return PayResult{}, err
	}

	blankCount := cashu.BlankOutputCount(fee)
	amounts := make([]uint64, blankCount)
	outputs, secrets, rs, err := w.createBlindedMessages(amounts)
	if err != nil {
		return PayResult{}, err
	}

	opID, err := generateOperationID()
	if err != nil {
		return PayResult{}, err
	}
	if err := w.pending.Save(PendingOperation{ID: opID, Kind: "melt", Outputs: outputs, Secrets: secrets, Rs: rs}); err != nil {
		w.logger.Warn("failed to persist pending melt operation", "error", err)
	}

	w.logger.Info("melting proofs for invoice", "amount", proofsToSend.Amount(), "fee_reserve", fee, "mint", w.mintURL)
	resp, err := w.client.Melt(ctx, nut05.PostMeltRequest{
		PR:      invoice,
		Proofs:  proofsToSend,
		Outputs: outputs,
	})
	if err != nil {
		w.logger.Error("melt request failed", "mint", w.mintURL, "error", err)
		return PayResult{}, err
	}

	var change cashu.Proofs
	if len(resp.Change) > 0 {
		change, err = constructProofs(resp.Change, rs, secrets, &w.keys)
		if err != nil {
			return PayResult{}, err
		}
	}

	if err := w.pending.Delete(opID); err != nil {
		w.logger.Warn("failed to clear pending melt operation", "error", err)
	}
	return PayResult{IsPaid: resp.Paid, Preimage: resp.Preimage, Change: change}, nil
}

func (w *Wallet) resolveFeeReserve(ctx context.Context, invoice string, feeReserve *uint64) (uint64, error) {
	if feeReserve != nil {
		return *feeReserve, nil
	}
	w.logger.Info("checking fee reserve", "mint", w.mintURL)
	fee, err := w.client.CheckFees(ctx, invoice)
	if err != nil {
		w.logger.Error("check fees failed", "mint", w.mintURL, "error", err)
		return 0, err
	}
	return fee, nil
}

// CheckProofsSpent asks the mint which of proofs are already spent and
// returns that subset — the proofs still good to spend are simply the
// ones not returned. See spec §4.6 checkProofsSpent.
func (w *Wallet) CheckProofsSpent(ctx context.Context, proofs cashu.Proofs) (cashu.Proofs, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	secrets := make([]string, len(proofs))
	for i, p := range proofs {
		secrets[i] = p.Secret
	}

	w.logger.Info("checking proof spent state", "count", len(proofs), "mint", w.mintURL)
	spendable, err := w.client.CheckSpent(ctx, secrets)
	if err != nil {
		w.logger.Error("check spent failed", "mint", w.mintURL, "error", err)
		return nil, err
	}
	if len(spendable) != len(proofs) {
		return nil, fmt.Errorf("wallet: mint returned %d spendable flags for %d proofs", len(spendable), len(proofs))
	}

	var spent cashu.Proofs
	for i, ok := range spendable {
		if !ok {
			spent = append(spent, proofs[i])
		}
	}
	return spent, nil
}

// keysetForMint resolves the keyset and client to use for a token
// entry's mint, consulting and populating cache so a multi-entry
// receive only fetches each foreign mint's keyset once. See spec §4.6
// "per-operation cache".
func (w *Wallet) keysetForMint(ctx context.Context, mintURL string, cache map[string]*crypto.MintKeySet) (*crypto.MintKeySet, MintClient, error) {
	client := w.clientFor(mintURL)

	if keyset, ok := cache[mintURL]; ok {
		return keyset, client, nil
	}

	w.logger.Info("fetching keyset", "mint", mintURL)
	keyset, err := client.GetKeys(ctx)
	if err != nil {
		w.logger.Error("fetching keyset failed", "mint", mintURL, "error", err)
		return nil, nil, err
	}
	cache[mintURL] = keyset
	return keyset, client, nil
}

func (w *Wallet) clientFor(mintURL string) MintClient {
	if mintURL == w.mintURL {
		return w.client
	}
	if w.clientForMint != nil {
		return w.clientForMint(mintURL)
	}
	return NewHTTPClient(mintURL)
}

func (w *Wallet) createBlindedMessages(amounts []uint64) (cashu.BlindedMessages, []string, []*secp256k1.PrivateKey, error) {
	return w.createBlindedMessagesFor(&w.keys, amounts)
}

// createBlindedMessagesFor blinds one fresh random secret per amount,
// tagged with keyset's id. See spec §4.2/§4.3 and invariant 1.
func (w *Wallet) createBlindedMessagesFor(keyset *crypto.MintKeySet, amounts []uint64) (cashu.BlindedMessages, []string, []*secp256k1.PrivateKey, error) {
	outputs := make(cashu.BlindedMessages, len(amounts))
	secrets := make([]string, len(amounts))
	rs := make([]*secp256k1.PrivateKey, len(amounts))

	for i, amount := range amounts {
		secret, err := generateSecret()
		if err != nil {
			return nil, nil, nil, err
		}

		r, err := secp256k1.GeneratePrivateKey()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: %v", cashu.ErrCryptoFailure, err)
		}

		B_, _ := crypto.BlindMessage([]byte(secret), r.Serialize())

		outputs[i] = cashu.BlindedMessage{
			Amount: amount,
			Id:     keyset.Id,
			B_:     hex.EncodeToString(B_.SerializeCompressed()),
		}
		secrets[i] = secret
		rs[i] = r
	}

	return outputs, secrets, rs, nil
}

// constructProofs unblinds each promise against the blinding factor and
// secret it was issued for, zipped by position. See spec §4.2 unblind.
func constructProofs(promises cashu.BlindedSignatures, rs []*secp256k1.PrivateKey, secrets []string, keyset *crypto.MintKeySet) (cashu.Proofs, error) {
	if len(promises) > len(rs) || len(promises) > len(secrets) {
		return nil, fmt.Errorf("wallet: mint returned more promises than outputs requested")
	}

	proofs := make(cashu.Proofs, len(promises))
	for i, promise := range promises {
		K, ok := keyset.Key(promise.Amount)
		if !ok {
			return nil, cashu.ErrInvalidKeyset
		}

		C_bytes, err := hex.DecodeString(promise.C_)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid promise C_: %v", cashu.ErrCryptoFailure, err)
		}
		C_, err := secp256k1.ParsePubKey(C_bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid promise C_: %v", cashu.ErrCryptoFailure, err)
		}

		C := crypto.UnblindSignature(C_, rs[i], K)

		proofs[i] = cashu.Proof{
			Amount: promise.Amount,
			Id:     promise.Id,
			Secret: secrets[i],
			C:      hex.EncodeToString(C.SerializeCompressed()),
		}
	}
	return proofs, nil
}

// generateSecret produces the wallet's 32-byte random secret, encoded
// as unpadded base64url: this string, not the raw bytes, is what gets
// hashed to curve and carried in the wire Proof.
func generateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("%w: %v", cashu.ErrCryptoFailure, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func generateOperationID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("%w: %v", cashu.ErrCryptoFailure, err)
	}
	return hex.EncodeToString(b), nil
}
