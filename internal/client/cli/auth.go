package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/vitaltrack/vitaltrack/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate
// testing; they point at the interactive input helpers.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Signup collects the registration form (email, password, confirmation)
// and runs the signup operation. Validation failures come back as the
// session's error message; nothing here inspects the password beyond
// passing it through.
func (a *App) Signup(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword("Confirm password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	res := a.session.Signup(ctx, email, string(password), string(confirm))
	if !res.Success {
		fmt.Println(res.Error)
		return nil
	}
	fmt.Println("Account created. You are signed in.")
	return nil
}

// Signin collects credentials and runs the signin operation.
func (a *App) Signin(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res := a.session.Signin(ctx, email, string(password))
	if !res.Success {
		fmt.Println(res.Error)
		return nil
	}
	fmt.Println("Signed in.")
	return nil
}

// Logout signs the user out; it cannot fail.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	fmt.Println("Signed out.")
	return nil
}

// WhoAmI prints the cached profile snapshot.
func (a *App) WhoAmI(ctx context.Context) error {
	user := a.session.User()
	if user == nil {
		fmt.Println("Not signed in.")
		return nil
	}
	fmt.Printf("id=%s email=%s\n", user.ID, user.Email)
	for name, value := range user.Extra {
		fmt.Printf("%s=%v\n", name, value)
	}
	return nil
}

// Profile collects a bundle of profile fields and merges them into the
// cached user record.
func (a *App) Profile(ctx context.Context) error {
	if !a.session.IsAuthenticated() {
		fmt.Println("Sign in first.")
		return nil
	}
	fields, err := GetFields(a.reader, os.Stdout)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		fmt.Println("Nothing to update.")
		return nil
	}
	a.session.UpdateUser(ctx, fields)
	fmt.Println("Profile updated.")
	return nil
}

// Check asks the server whether the current session is still valid and
// reacts like the mobile app would: a negative answer triggers a logout.
func (a *App) Check(ctx context.Context) error {
	if a.session.CheckSession(ctx) {
		fmt.Println("Session is valid.")
		return nil
	}
	fmt.Println("Session is no longer valid, signing out.")
	a.session.Logout(ctx)
	return nil
}

// Status prints the current session snapshot. The token itself is never
// displayed.
func (a *App) Status(ctx context.Context) error {
	snap := a.session.Snapshot()
	fmt.Printf("authenticated=%v loading=%v\n", snap.IsAuthenticated, snap.IsLoading)
	if snap.Error != "" {
		fmt.Printf("last error: %s\n", snap.Error)
	}
	return nil
}
