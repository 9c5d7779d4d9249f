package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chain_chat/config"
	"chain_chat/internal/model"
	"chain_chat/internal/service/app"
	"chain_chat/internal/utils/log"
	"chain_chat/internal/wallet"

	"go.uber.org/zap"
)

const usage = `Usage:
  client new-account
  client register <account>
  client send <account> <recipient> <text> [-permanent] [-fee N]
  client load <account> <other>
  client permanent <account>
  client watch <account> <other>`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatal("load config failed", zap.Error(err))
	}

	w := loadOrCreateWallet(cfg.WalletPath)

	var policy app.FallbackPolicy
	if cfg.FallbackMode == "fanout" {
		policy = &app.FanOut{}
	}
	client := app.NewApp(app.Config{
		Endpoints:   cfg.EndpointList(),
		Policy:      policy,
		StartOffset: cfg.StartOffset,
	}, w)

	ctx := context.Background()

	switch os.Args[1] {
	case "new-account":
		account, err := w.CreateAccount()
		if err != nil {
			log.Fatal("create account failed", zap.Error(err))
		}
		if err := w.SaveTo(cfg.WalletPath); err != nil {
			log.Fatal("save wallet failed", zap.Error(err))
		}
		fmt.Println(account.Hex())

	case "register":
		account := mustAccount(os.Args, 2)
		txID, err := client.Register(ctx, account)
		if err != nil {
			log.Fatal("register failed", zap.Error(err))
		}
		fmt.Printf("registered, tx %s\n", txID)

	case "send":
		if len(os.Args) < 5 {
			fmt.Println(usage)
			os.Exit(1)
		}
		account := mustAccount(os.Args, 2)
		recipient := mustAccount(os.Args, 3)
		text := os.Args[4]

		fs := flag.NewFlagSet("send", flag.ExitOnError)
		permanent := fs.Bool("permanent", false, "store the message durably on the ledger")
		fee := fs.Uint64("fee", 0, "fee to attach (required for permanent messages)")
		fs.Parse(os.Args[5:])

		receipt, err := client.SendMessage(ctx, account, recipient, text, *permanent, *fee)
		if err != nil {
			log.Fatal("send failed", zap.Error(err))
		}
		fmt.Printf("sent, message %s tx %s\n", receipt.MessageID.Hex(), receipt.TxID)

	case "load":
		account := mustAccount(os.Args, 2)
		other := mustAccount(os.Args, 3)

		conv, err := client.LoadConversation(ctx, account, other)
		if err != nil {
			log.Fatal("load failed", zap.Error(err))
		}
		if conv.Unavailable {
			fmt.Println("ledger unreachable, try again later")
			return
		}
		for _, m := range conv.Messages {
			printMessage(m)
		}

	case "permanent":
		account := mustAccount(os.Args, 2)
		ids, err := client.PermanentMessages(ctx, account)
		if err != nil {
			log.Fatal("list permanent failed", zap.Error(err))
		}
		for _, id := range ids {
			msg, err := client.GetPermanentMessage(ctx, account, id)
			if err != nil {
				log.Error("fetch permanent message failed", zap.String("id", id.Hex()), zap.Error(err))
				continue
			}
			printMessage(*msg)
		}

	case "watch":
		account := mustAccount(os.Args, 2)
		other := mustAccount(os.Args, 3)

		ctx, cancel := context.WithCancel(ctx)
		done := make(chan os.Signal, 1)
		signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-done
			cancel()
		}()

		err := client.Subscribe(ctx, account, other, printMessage)
		if err != nil && ctx.Err() == nil {
			log.Fatal("subscription failed", zap.Error(err))
		}

	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

func printMessage(m model.DecryptedMessage) {
	who := m.Sender.Hex()
	if m.IsFromMe {
		who = "me"
	}
	ts := time.Unix(m.Timestamp, 0).Format(time.RFC3339)
	fmt.Printf("[%s] %s: %s\n", ts, who, m.Text)
}

func mustAccount(args []string, idx int) model.Account {
	if len(args) <= idx {
		fmt.Println(usage)
		os.Exit(1)
	}
	account, err := model.ParseAccount(args[idx])
	if err != nil {
		log.Fatal("invalid account", zap.Error(err))
	}
	return account
}

func loadOrCreateWallet(path string) *wallet.LocalWallet {
	if _, err := os.Stat(path); err != nil {
		return wallet.NewLocalWallet()
	}
	w, err := wallet.LoadWallet(path)
	if err != nil {
		log.Fatal("load wallet failed", zap.Error(err))
	}
	return w
}
