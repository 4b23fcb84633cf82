// Command nutw is a minimal CLI over the wallet package: request a
// mint quote, redeem it, send, receive, pay a Lightning invoice, and
// check balance. Proofs live in a small JSON file on disk; the wallet
// package itself holds no state beyond the mint's keyset, per its
// single-mint, stateless-per-call design (see spec §4.6).
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/satbag/cashuwallet/cashu"
	"github.com/satbag/cashuwallet/wallet"
	"github.com/satbag/cashuwallet/wallet/storage"
	"github.com/urfave/cli/v2"
)

// walletState is the CLI's on-disk record: the mint it's pointed at,
// the id, unit and mint URL of that mint's last-fetched keyset (not its
// keys), and the proofs it currently holds.
type walletState struct {
	MintURL string           `json:"mint_url"`
	Keys    cashuKeysetWire  `json:"keys"`
	Proofs  cashu.Proofs     `json:"proofs"`
}

// cashuKeysetWire mirrors crypto.MintKeySet for JSON persistence
// without fighting PublicKeys' custom (de)serialization.
type cashuKeysetWire struct {
	Id      string `json:"id"`
	Unit    string `json:"unit"`
	MintURL string `json:"mint_url"`
}

func statePath() string {
	homedir, err := os.UserHomeDir()
	if err != nil {
		log.Fatal(err)
	}
	dir := filepath.Join(homedir, ".nutw")
	if err := os.MkdirAll(dir, 0700); err != nil {
		log.Fatal(err)
	}
	return filepath.Join(dir, "wallet.json")
}

func loadState() (*walletState, error) {
	data, err := os.ReadFile(statePath())
	if errors.Is(err, os.ErrNotExist) {
		return &walletState{MintURL: defaultMintURL()}, nil
	}
	if err != nil {
		return nil, err
	}

	var st walletState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func saveState(st *walletState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(statePath(), data, 0600)
}

func defaultMintURL() string {
	if mintURL := os.Getenv("MINT_URL"); mintURL != "" {
		return mintURL
	}
	return "http://127.0.0.1:3338"
}

func loadEnv() {
	homedir, err := os.UserHomeDir()
	if err != nil {
		return
	}
	envPath := filepath.Join(homedir, ".nutw", ".env")
	if _, err := os.Stat(envPath); err == nil {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}
}

func newWallet(st *walletState, pendingDir string) (*wallet.Wallet, error) {
	pending, err := storage.NewBoltPendingStore(pendingDir)
	if err != nil {
		return nil, fmt.Errorf("opening pending operation store: %w", err)
	}

	httpClient := wallet.NewHTTPClient(st.MintURL)

	keys, err := httpClient.GetKeys(context.Background())
	if err != nil {
		return nil, fmt.Errorf("fetching keyset from mint: %w", err)
	}
	st.Keys = cashuKeysetWire{Id: keys.Id, Unit: keys.Unit, MintURL: keys.MintURL}

	return wallet.NewWallet(wallet.Config{
		MintURL: st.MintURL,
		Keys:    *keys,
		Client:  httpClient,
		Pending: pending,
		Logger:  slog.Default(),
	})
}

func main() {
	loadEnv()

	app := &cli.App{
		Name:  "nutw",
		Usage: "cashu wallet",
		Commands: []*cli.Command{
			balanceCmd,
			mintCmd,
			sendCmd,
			receiveCmd,
			payCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func pendingDir() string {
	homedir, err := os.UserHomeDir()
	if err != nil {
		log.Fatal(err)
	}
	dir := filepath.Join(homedir, ".nutw", "pending")
	if err := os.MkdirAll(dir, 0700); err != nil {
		log.Fatal(err)
	}
	return dir
}

var balanceCmd = &cli.Command{
	Name:  "balance",
	Usage: "Wallet balance",
	Action: func(ctx *cli.Context) error {
		st, err := loadState()
		if err != nil {
			return err
		}
		fmt.Printf("%d sats\n", st.Proofs.Amount())
		return nil
	},
}

const invoiceFlag = "invoice"

var mintCmd = &cli.Command{
	Name:      "mint",
	Usage:     "Request a mint quote, or redeem one with --hash once its invoice is paid",
	ArgsUsage: "[AMOUNT] or --hash HASH",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "hash", Usage: "Quote hash to redeem, once the invoice is paid"},
	},
	Action: func(ctx *cli.Context) error {
		st, err := loadState()
		if err != nil {
			return err
		}

		w, err := newWallet(st, pendingDir())
		if err != nil {
			return err
		}

		if hash := ctx.String("hash"); hash != "" {
			args := ctx.Args()
			if args.Len() < 1 {
				return errors.New("specify the amount the quote was for")
			}
			amount, err := strconv.ParseUint(args.First(), 10, 64)
			if err != nil {
				return errors.New("invalid amount")
			}

			proofs, err := w.RequestTokens(context.Background(), amount, hash)
			if err != nil {
				return err
			}
			st.Proofs = append(st.Proofs, proofs...)
			fmt.Printf("%d sats minted\n", proofs.Amount())
			return saveState(st)
		}

		args := ctx.Args()
		if args.Len() < 1 {
			return errors.New("specify an amount to mint")
		}
		amount, err := strconv.ParseUint(args.First(), 10, 64)
		if err != nil {
			return errors.New("invalid amount")
		}

		httpClient := wallet.NewHTTPClient(st.MintURL)
		quote, err := httpClient.RequestMint(context.Background(), amount)
		if err != nil {
			return err
		}

		fmt.Printf("invoice: %v\n", quote.PR)
		fmt.Printf("after paying, redeem with: nutw mint %d --hash %v\n", amount, quote.Hash)
		return nil
	},
}

var sendCmd = &cli.Command{
	Name:      "send",
	Usage:     "Create a token to send",
	ArgsUsage: "[AMOUNT]",
	Action: func(ctx *cli.Context) error {
		args := ctx.Args()
		if args.Len() < 1 {
			return errors.New("specify an amount to send")
		}
		amount, err := strconv.ParseUint(args.First(), 10, 64)
		if err != nil {
			return errors.New("invalid amount")
		}

		st, err := loadState()
		if err != nil {
			return err
		}
		w, err := newWallet(st, pendingDir())
		if err != nil {
			return err
		}

		send, change, err := w.Send(context.Background(), amount, st.Proofs)
		if err != nil {
			return err
		}

		token := cashu.NewToken(send, st.MintURL)
		encoded, err := token.Serialize()
		if err != nil {
			return err
		}

		st.Proofs = change
		if err := saveState(st); err != nil {
			return err
		}

		fmt.Println(encoded)
		return nil
	},
}

var receiveCmd = &cli.Command{
	Name:      "receive",
	Usage:     "Receive a token",
	ArgsUsage: "[TOKEN]",
	Action: func(ctx *cli.Context) error {
		args := ctx.Args()
		if args.Len() < 1 {
			return errors.New("token not provided")
		}

		st, err := loadState()
		if err != nil {
			return err
		}
		w, err := newWallet(st, pendingDir())
		if err != nil {
			return err
		}

		received, tokensWithErrors, err := w.Receive(context.Background(), args.First())
		if err != nil {
			return err
		}

		st.Proofs = append(st.Proofs, received...)
		if err := saveState(st); err != nil {
			return err
		}

		fmt.Printf("%d sats received\n", received.Amount())
		if tokensWithErrors != nil {
			fmt.Printf("%d entries could not be redeemed\n", len(tokensWithErrors.Token))
		}
		return nil
	},
}

var payCmd = &cli.Command{
	Name:      "pay",
	Usage:     "Pay a Lightning invoice",
	ArgsUsage: "[INVOICE]",
	Action: func(ctx *cli.Context) error {
		args := ctx.Args()
		if args.Len() < 1 {
			return errors.New("invoice not provided")
		}
		invoice := args.First()

		amount, err := wallet.InvoiceAmount(invoice)
		if err != nil {
			return err
		}

		st, err := loadState()
		if err != nil {
			return err
		}
		w, err := newWallet(st, pendingDir())
		if err != nil {
			return err
		}

		httpClient := wallet.NewHTTPClient(st.MintURL)
		fee, err := httpClient.CheckFees(context.Background(), invoice)
		if err != nil {
			return err
		}

		send, change, err := w.Send(context.Background(), amount+fee, st.Proofs)
		if err != nil {
			return err
		}

		result, err := w.PayLightningInvoice(context.Background(), invoice, send, &fee)
		if err != nil {
			return err
		}

		st.Proofs = append(change, result.Change...)
		if err := saveState(st); err != nil {
			return err
		}

		fmt.Printf("paid: %v\n", result.IsPaid)
		return nil
	},
}
