// Command hash-generator prints bcrypt hashes for seeding users directly
// into the database, using the same cost the server is configured with.
//
// Usage:
//
//	hash-generator [-cost 10] password [password...]
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/phrazzld/receipt-api/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost factor (4-31)")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: hash-generator [-cost N] password [password...]")
		os.Exit(2)
	}

	if err := hashPasswords(os.Stdout, *cost, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// hashPasswords writes one "password<TAB>hash" line per input. Passwords that
// registration would reject are refused so seeded users can still log in.
func hashPasswords(w io.Writer, cost int, passwords []string) error {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return fmt.Errorf("cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	for _, password := range passwords {
		switch {
		case len(password) < domain.MinPasswordLength:
			return fmt.Errorf("%q: %w", password, domain.ErrPasswordTooShort)
		case len(password) > domain.MaxPasswordLength:
			return fmt.Errorf("%q: %w", password, domain.ErrPasswordTooLong)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
		if err != nil {
			return fmt.Errorf("hashing %q: %w", password, err)
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\n", password, hash); err != nil {
			return err
		}
	}
	return nil
}
