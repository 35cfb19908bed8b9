// admin-hash prints a bcrypt hash for an admin password, for provisioning
// admin_users rows by hand.
//
//	admin-hash -password 's3cret'
//	echo 's3cret' | admin-hash
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	password := flag.String("password", "", "password to hash (read from stdin when empty)")
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	flag.Parse()

	pw := *password
	if pw == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			log.Fatal("no password given")
		}
		pw = strings.TrimRight(line, "\r\n")
	}

	hash, err := hashPassword(pw, *cost)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(hash)
}

func hashPassword(password string, cost int) (string, error) {
	if len(password) < 8 {
		return "", fmt.Errorf("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
