package models

import (
	"errors"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// Column limits for the 'users' table
const (
	MaxUsernameLen = 20
	MaxFNameLen    = 50
	MaxLNameLen    = 50
	MaxEmailLen    = 200
)

// User is the model for the 'users' table.
// Profile fields are nullable, so they are pointers.
type User struct {
	ID           int64   `json:"id" db:"id"`
	Username     string  `json:"username" db:"username"`
	PasswordHash string  `json:"-" db:"hashed_password"`
	FName        *string `json:"fname" db:"fname"`
	LName        *string `json:"lname" db:"lname"`
	Email        *string `json:"email" db:"email"`
}

// UserPatch is the body of PUT /users/:username. Absent or empty fields leave
// the stored value untouched.
type UserPatch struct {
	Username *string `json:"username"`
	FName    *string `json:"fname"`
	LName    *string `json:"lname"`
	Email    *string `json:"email"`
}

// Validate checks only the fields the patch supplies.
func (p UserPatch) Validate() error {
	checks := []struct {
		val *string
		max int
		msg string
	}{
		{p.Username, MaxUsernameLen, "username is too long"},
		{p.FName, MaxFNameLen, "fname is too long"},
		{p.LName, MaxLNameLen, "lname is too long"},
		{p.Email, MaxEmailLen, "email is too long"},
	}

	supplied := 0
	for _, chk := range checks {
		if !present(chk.val) {
			continue
		}
		supplied++
		if utf8.RuneCountInString(*chk.val) > chk.max {
			return ValidationError(chk.msg)
		}
	}
	if supplied == 0 {
		return ValidationError("no updatable fields supplied")
	}
	return nil
}

// ApplyTo merges the patch over u and returns the result; u is not modified.
func (p UserPatch) ApplyTo(u User) User {
	merged := u
	if present(p.Username) {
		merged.Username = *p.Username
	}
	if present(p.FName) {
		merged.FName = copyString(p.FName)
	}
	if present(p.LName) {
		merged.LName = copyString(p.LName)
	}
	if present(p.Email) {
		merged.Email = copyString(p.Email)
	}
	return merged
}

// Password Helper (Standard)
type Password struct {
	Plaintext *string
	Hash      string
}

func (p *Password) Set(plaintextPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintextPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.Hash = string(hash)
	p.Plaintext = &plaintextPassword
	return nil
}

func (p *Password) Matches(plaintextPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(p.Hash), []byte(plaintextPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func present(s *string) bool {
	return s != nil && *s != ""
}

func copyString(s *string) *string {
	v := *s
	return &v
}
