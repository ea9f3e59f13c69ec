// Command seed loads a small demo data set into the message board database.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/oklog/ulid/v2"
)

type seedUser struct {
	Name  string
	Email string
}

type seedMessage struct {
	Content string
	Email   string
}

var (
	demoUsers = []seedUser{
		{Name: "Alice Johnson", Email: "alice@example.com"},
		{Name: "Bob Smith", Email: "bob@example.com"},
	}
	demoMessages = []seedMessage{
		{Content: "Hello, this is my first message!", Email: "alice@example.com"},
		{Content: "Hi everyone, Bob here!", Email: "bob@example.com"},
		{Content: "The weather is great today!", Email: "alice@example.com"},
	}
)

type summary struct {
	MessagesDeleted int64 `json:"messages_deleted"`
	UsersDeleted    int64 `json:"users_deleted"`
	UsersCreated    int64 `json:"users_created"`
	MessagesCreated int64 `json:"messages_created"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		keep        = flag.Bool("keep", false, "Keep existing rows instead of clearing both tables first")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sql.Open("postgres", *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open database:", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}

	out, err := seed(ctx, db, *keep)
	if err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Printf("Seeded %d users and %d messages (removed %d users, %d messages)\n",
			out.UsersCreated, out.MessagesCreated, out.UsersDeleted, out.MessagesDeleted)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

// seed writes the demo users and messages in one transaction. Unless keep
// is set, both tables are emptied first. Existing users are matched by
// email and not duplicated.
func seed(ctx context.Context, db *sql.DB, keep bool) (summary, error) {
	var out summary

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return out, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if !keep {
		if out.MessagesDeleted, err = execCount(ctx, tx, `DELETE FROM messages`); err != nil {
			return out, fmt.Errorf("clear messages: %w", err)
		}
		if out.UsersDeleted, err = execCount(ctx, tx, `DELETE FROM users`); err != nil {
			return out, fmt.Errorf("clear users: %w", err)
		}
	}

	ids, names, emails := userColumns(demoUsers)
	out.UsersCreated, err = execCount(ctx, tx, `
		INSERT INTO users (id, name, email)
		SELECT * FROM unnest($1::text[], $2::text[], $3::text[])
		ON CONFLICT (email) DO NOTHING`,
		pq.Array(ids), pq.Array(names), pq.Array(emails),
	)
	if err != nil {
		return out, fmt.Errorf("insert users: %w", err)
	}

	// Owners are resolved by email so kept users receive the messages too.
	ids, contents, owners := messageColumns(demoMessages)
	out.MessagesCreated, err = execCount(ctx, tx, `
		INSERT INTO messages (id, content, user_id)
		SELECT m.id, m.content, u.id
		FROM unnest($1::text[], $2::text[], $3::text[]) AS m(id, content, email)
		JOIN users u ON u.email = m.email`,
		pq.Array(ids), pq.Array(contents), pq.Array(owners),
	)
	if err != nil {
		return out, fmt.Errorf("insert messages: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return out, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

func execCount(ctx context.Context, tx *sql.Tx, query string, args ...any) (int64, error) {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func userColumns(users []seedUser) (ids, names, emails []string) {
	for _, u := range users {
		ids = append(ids, ulid.Make().String())
		names = append(names, u.Name)
		emails = append(emails, u.Email)
	}
	return ids, names, emails
}

func messageColumns(messages []seedMessage) (ids, contents, emails []string) {
	for _, m := range messages {
		ids = append(ids, ulid.Make().String())
		contents = append(contents, m.Content)
		emails = append(emails, m.Email)
	}
	return ids, contents, emails
}
