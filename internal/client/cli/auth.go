package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dvoronkov/petvault/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts the user for a username and password and creates a
// local account. The account reaches the remote store on the next sync
// cycle, so registration works fully offline.
//
// The password byte slice is securely wiped before returning.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.authService.Register(ctx, username, password); err != nil {
		if errors.Is(err, common.ErrValidation) {
			printlnFn(err.Error())
			return nil
		}
		return err
	}

	printlnFn("Account created. You can now login.")
	return nil
}

// Login prompts for credentials and verifies them against the local store.
// On success it opens a persisted session, scopes the sync engine to the
// user, and requests an immediate sync cycle.
//
// The password is securely wiped before returning.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	sess, err := a.authService.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			printlnFn("Invalid username or password.")
			return nil
		}
		return err
	}

	a.setSession(sess)
	printlnFn(fmt.Sprintf("Logged in as %s.", sess.Username))
	a.engine.Trigger()
	return nil
}

// Logout drops the persisted session and unscopes the sync engine. Pending
// local changes stay in the store and sync after the next login.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.setSession(nil)
	printlnFn("Logged out.")
	return nil
}
