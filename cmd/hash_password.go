package cmd

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/traitdex/traitdex/internal/kdf/bcrypt"
)

// RunHashPassword reads a password (terminal prompt, or stdin when piped)
// and prints its bcrypt hash for auth.password_hash.
func RunHashPassword(cost int) error {
	var password string

	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprint(os.Stderr, "Password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return err
		}
		password = string(raw)
	} else {
		var line string
		if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
			return fmt.Errorf("read password from stdin: %w", err)
		}
		password = strings.TrimSpace(line)
	}

	hash, err := bcrypt.Hash(password, cost)
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}
