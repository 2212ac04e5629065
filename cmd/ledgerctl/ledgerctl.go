package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coreledger/ledger-service/internal/app"
	"github.com/coreledger/ledger-service/internal/config"
	"github.com/coreledger/ledger-service/internal/domain"
	"github.com/coreledger/ledger-service/internal/store"
)

// openService builds the ledger service over the store named in the
// environment. The CLI shares the server's configuration, so pointing both at
// the same DATABASE_URL gives a consistent view.
func openService(ctx context.Context) (*app.Service, func(), error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.StoreDriver != config.StorePostgres {
		return nil, nil, fmt.Errorf("ledgerctl requires STORE_DRIVER=%s (got %q)", config.StorePostgres, cfg.StoreDriver)
	}

	dbpool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repository := store.NewPostgresRepository(dbpool)
	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := repository.Migrate(migrateCtx); err != nil {
		dbpool.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return app.NewService(repository), dbpool.Close, nil
}

// resolveAccount accepts either an account id or an account name.
func resolveAccount(ctx context.Context, service *app.Service, ref string) (*domain.Account, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return service.GetAccount(ctx, id)
	}
	return service.GetAccountByName(ctx, ref)
}

func printAccount(account *domain.Account) {
	fmt.Printf("%s  %-20s  %12s  %s\n",
		account.ID, account.Name, account.Balance, account.CreatedAt.UTC().Format(time.RFC3339))
}

func printTransaction(txn *domain.Transaction) {
	from, to := "-", "-"
	if txn.FromAccountID != nil {
		from = txn.FromAccountID.String()
	}
	if txn.ToAccountID != nil {
		to = txn.ToAccountID.String()
	}
	fmt.Printf("%s  %-10s  %12s  %s -> %s  %s\n",
		txn.CreatedAt.UTC().Format(time.RFC3339), txn.Type, txn.Amount, from, to, txn.Description)
}
