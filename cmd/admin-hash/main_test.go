package main

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := hashPassword("tournament-admin", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashPassword: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte("tournament-admin")) != nil {
		t.Fatal("hash does not match password")
	}
	if _, err := hashPassword("short", bcrypt.MinCost); err == nil {
		t.Fatal("short password accepted")
	}
}
