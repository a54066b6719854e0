// Package main provisions custodial wallets: generate or import an ed25519
// key, encrypt it under the master key, and store the result.
package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"solana-sniper/internal/custody"
	"solana-sniper/internal/storage"
	"solana-sniper/internal/storage/migrations"
	"solana-sniper/internal/storage/postgres"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	_ = godotenv.Load()

	cmd := os.Args[1]
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	userID := fs.String("user", "", "User ID owning the wallet")
	dsn := fs.String("dsn", os.Getenv("SNIPER_POSTGRES_DSN"), "Postgres DSN")
	key := fs.String("key", "", "Base58-encoded 64-byte private key (import only)")
	_ = fs.Parse(os.Args[2:])

	if *userID == "" {
		*userID = uuid.New().String()
		fmt.Printf("No -user given, assigned %s\n", *userID)
	}
	if *dsn == "" {
		fmt.Fprintln(os.Stderr, "Error: -dsn (or SNIPER_POSTGRES_DSN) is required")
		os.Exit(2)
	}

	var err error
	switch cmd {
	case "generate":
		err = provision(*dsn, *userID, nil)
	case "import":
		if *key == "" {
			fmt.Fprintln(os.Stderr, "Error: -key is required for import")
			os.Exit(2)
		}
		var priv ed25519.PrivateKey
		priv, err = custody.DecodePrivateKey(*key)
		if err == nil {
			err = provision(*dsn, *userID, priv)
		}
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// provision encrypts the key (generating one when priv is nil) and stores it.
func provision(dsn, userID string, priv ed25519.PrivateKey) error {
	master, err := custody.LoadMasterKey()
	if err != nil {
		return fmt.Errorf("load master key: %w", err)
	}

	if priv == nil {
		_, priv, err = ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return fmt.Errorf("generate key: %w", err)
		}
	}
	defer custody.Zero(priv)

	material, err := custody.Encrypt(master, userID, priv, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("encrypt key: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	store := postgres.NewWalletStore(pool)
	if err := store.Insert(ctx, material); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return fmt.Errorf("user %q already has a wallet", userID)
		}
		return fmt.Errorf("store wallet: %w", err)
	}

	fmt.Printf("Wallet stored for %s\n", userID)
	fmt.Printf("  Public key: %s\n", material.PublicKey)
	return nil
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: walletctl <command> [flags]

Commands:
  generate  Generate a new keypair, encrypt it, and store it
  import    Encrypt and store an existing private key

Flags:
  -user string  User ID owning the wallet (default: new UUID)
  -dsn string   Postgres DSN (default $SNIPER_POSTGRES_DSN)
  -key string   Base58 private key, import only
`)
}
