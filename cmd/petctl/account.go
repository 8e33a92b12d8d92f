package main

import (
	"context"
	"fmt"
	"os"

	"pet-guardian/internal/domain/session"
)

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlags("login")
	email := fs.String("email", "", "Email")
	password := fs.String("password", os.Getenv("PETCTL_PASSWORD"), "Password (o PETCTL_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.store.Login(ctx, *email, *password); err != nil {
		return err
	}
	u, _ := a.store.User()
	fmt.Fprintf(a.out, "Welcome, %s!\n", displayName(u))
	return nil
}

func runRegister(ctx context.Context, a *app, args []string) error {
	fs := newFlags("register")
	in := session.RegisterInput{}
	fs.StringVar(&in.FirstName, "first-name", "", "Nombre")
	fs.StringVar(&in.LastName, "last-name", "", "Apellido")
	fs.StringVar(&in.Email, "email", "", "Email")
	fs.StringVar(&in.Password, "password", os.Getenv("PETCTL_PASSWORD"), "Password (o PETCTL_PASSWORD)")
	fs.StringVar(&in.ConfirmPassword, "confirm-password", "", "Repetir password (default: igual a --password)")
	fs.StringVar(&in.Phone, "phone", "", "Teléfono")
	fs.StringVar(&in.Address, "address", "", "Dirección")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if in.ConfirmPassword == "" {
		in.ConfirmPassword = in.Password
	}

	if err := a.store.Register(ctx, in); err != nil {
		return err
	}
	u, _ := a.store.User()
	fmt.Fprintf(a.out, "Account created. Welcome, %s!\n", displayName(u))
	return nil
}

func runLogout(ctx context.Context, a *app, _ []string) error {
	if err := a.store.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func runForgotPassword(ctx context.Context, a *app, args []string) error {
	fs := newFlags("forgot-password")
	email := fs.String("email", "", "Email de la cuenta")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.store.RequestPasswordReset(ctx, *email); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "If the account exists, a reset link was sent.")
	return nil
}

func runResetPassword(ctx context.Context, a *app, args []string) error {
	fs := newFlags("reset-password")
	token := fs.String("token", "", "Token del link de reseteo")
	password := fs.String("password", os.Getenv("PETCTL_PASSWORD"), "Nueva password (o PETCTL_PASSWORD)")
	confirm := fs.String("confirm-password", "", "Repetir password (default: igual a --password)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *confirm == "" {
		*confirm = *password
	}

	if err := a.store.ResetPasswordConfirm(ctx, *token, *password, *confirm); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password updated. Log in with `petctl login`.")
	return nil
}

func runWhoami(_ context.Context, a *app, _ []string) error {
	u, _ := a.store.User()
	fmt.Fprintf(a.out, "%s <%s> (%s)\n", displayName(u), u.Email, u.ID)
	return nil
}

func displayName(u session.User) string {
	if u.FirstName == "" {
		return u.Email
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
