// Command token prints an access token for calling the API locally.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cmlabs-hris/hris-attendance-freeze/internal/config"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/pkg/jwt"
)

func main() {
	userID := flag.String("user", "local-admin", "value of the user_id claim")
	roleName := flag.String("role", string(user.RoleOwner), "owner, manager, employee or pending")
	flag.Parse()

	role, ok := user.ParseRole(*roleName)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown role %q\n", *roleName)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	token, _, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL).GenerateAccessToken(*userID, role)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error generating token:", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
