// Command useradmin bootstraps accounts and catalogue entries in the admin
// database: create a user, change a role, add a product.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/gogotex/admin-service/internal/config"
	"github.com/gogotex/admin-service/internal/database"
	"github.com/gogotex/admin-service/internal/models"
	"github.com/gogotex/admin-service/internal/passwords"
	"github.com/gogotex/admin-service/internal/product/repository"
	"github.com/gogotex/admin-service/internal/users"
	"github.com/gogotex/admin-service/pkg/logger"
)

type options struct {
	username     string
	email        string
	password     string
	role         string
	productName  string
	productPrice float64
	productStock int
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := pflag.NewFlagSet("useradmin", pflag.ContinueOnError)
	fs.StringVarP(&o.username, "username", "u", "", "account username")
	fs.StringVarP(&o.email, "email", "e", "", "email for a new account (creates the account)")
	fs.StringVarP(&o.password, "password", "p", "", "password for a new account")
	fs.StringVarP(&o.role, "role", "r", "", "set the account role (admin|user)")
	fs.StringVar(&o.productName, "product-name", "", "add a product with this name")
	fs.Float64Var(&o.productPrice, "product-price", 0, "price of the added product")
	fs.IntVar(&o.productStock, "product-stock", 0, "stock of the added product")
	if err := fs.Parse(args); err != nil {
		return o, err
	}

	creating := o.email != "" || o.password != ""
	if o.username == "" && (creating || o.role != "") {
		return o, errors.New("--username is required")
	}
	if creating && (o.email == "" || len(o.password) < users.PasswordMinLength) {
		return o, fmt.Errorf("creating an account needs --email and a --password of at least %d characters", users.PasswordMinLength)
	}
	if !creating && o.role == "" && o.productName == "" {
		return o, errors.New("nothing to do: pass --email/--password, --role or --product-name")
	}
	return o, nil
}

func run(ctx context.Context, cfg *config.Config, o options, out io.Writer) error {
	db, err := database.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, 10*time.Second)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	accounts := users.NewService(users.NewGORMRepository(db), passwords.NewHasher(cfg.Password))

	if o.email != "" {
		if err := accounts.Register(ctx, o.username, o.email, o.password); err != nil {
			return fmt.Errorf("create %s: %w", o.username, err)
		}
		fmt.Fprintf(out, "created user %s\n", o.username)
	}
	if o.role != "" {
		if err := accounts.SetRole(ctx, o.username, o.role); err != nil {
			return fmt.Errorf("set role for %s: %w", o.username, err)
		}
		fmt.Fprintf(out, "user %s now has role %s\n", o.username, o.role)
	}
	if o.productName != "" {
		p := &models.Product{Name: o.productName, Price: o.productPrice, Stock: o.productStock}
		if err := repository.NewGORMRepo(db).Create(ctx, p); err != nil {
			return fmt.Errorf("add product: %w", err)
		}
		fmt.Fprintf(out, "added product %d %s\n", p.ID, p.Name)
	}
	return nil
}

func main() {
	o, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel)
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, o, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
