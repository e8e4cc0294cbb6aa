// Command codehubctl performs administrative tasks against the database
// directly: bootstrapping a superuser and registering API clients.
//
// Usage:
//
//	codehubctl create-superuser
//	codehubctl create-client
package main

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/aicodehub/aicodehub/internal/buildinfo"
	"github.com/aicodehub/aicodehub/internal/server/config"
	"github.com/aicodehub/aicodehub/internal/server/repositories/repomanager"
	"github.com/aicodehub/aicodehub/internal/server/services"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

func getSimpleText(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Println(prompt)
	text, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func newUserService(cfg *config.Config) (*services.UserService, *sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migration error: %w", err)
	}

	return services.NewUserService(db, rm, cfg), db, nil
}

func createSuperuser(ctx context.Context, cfg *config.Config) error {
	reader := bufio.NewReader(os.Stdin)

	username, err := getSimpleText(reader, "Enter username")
	if err != nil {
		return err
	}
	email, err := getSimpleText(reader, "Enter email (optional)")
	if err != nil {
		return err
	}

	fmt.Println("Enter password")
	password, err := readPassword()
	if err != nil {
		return err
	}

	svc, db, err := newUserService(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := svc.EnsureSuperuser(ctx, username, email, string(password)); err != nil {
		return err
	}

	fmt.Println("Success!")
	return nil
}

func createClient(ctx context.Context, cfg *config.Config) error {
	reader := bufio.NewReader(os.Stdin)

	name, err := getSimpleText(reader, "Enter client name")
	if err != nil {
		return err
	}

	svc, db, err := newUserService(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	client, secret, err := svc.CreateAPIClient(ctx, name)
	if err != nil {
		return err
	}

	fmt.Printf("client_id: %s\n", client.ClientID)
	fmt.Printf("client_secret: %s\n", secret)
	fmt.Println("Store the secret now, it cannot be recovered later.")
	return nil
}

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	if len(os.Args) < 2 {
		log.Fatalf("usage: codehubctl <create-superuser|create-client>")
	}
	command := os.Args[1]
	os.Args = append(os.Args[:1], os.Args[2:]...)

	ctx := context.Background()
	cfg := config.LoadConfig()

	var err error
	switch command {
	case "create-superuser":
		err = createSuperuser(ctx, cfg)
	case "create-client":
		err = createClient(ctx, cfg)
	default:
		log.Fatalf("unknown command %q", command)
	}

	if err != nil {
		log.Fatalf("%v", err)
	}
}
