package main

import (
	"fmt"
	"log"
	"os"

	"codeberg.org/recruitportal/server/internal/auth"
	"codeberg.org/recruitportal/server/internal/verification"
	"github.com/joho/godotenv"
)

// mints a session cookie value and a verification token for local testing
func main() {
	// load environment
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	email := "test@example.com"
	if len(os.Args) > 1 {
		email = os.Args[1]
	}

	sessions, err := auth.NewSessionCodec(os.Getenv("JWT_SECRET"), auth.SessionTTL)
	if err != nil {
		log.Fatalf("JWT_SECRET: %v", err)
	}

	tokens, err := verification.NewCodec(os.Getenv("VERIFICATION_SECRET"))
	if err != nil {
		log.Fatalf("VERIFICATION_SECRET: %v", err)
	}

	session, expires, err := sessions.Issue(auth.Claim{Email: email, Name: "Test Applicant"})
	if err != nil {
		log.Fatalf("Failed to issue session: %v", err)
	}

	fmt.Printf("Session for %s (expires %s):\n%s\n\n", email, expires.Format("15:04:05"), session)
	fmt.Printf("Verification token (valid for %s):\n%s\n\n", tokens.Window(), tokens.Now(email))
	fmt.Printf("Try it:\ncurl -b \"%s=%s\" -H 'Content-Type: application/json' \\\n  -d '{\"email\":\"%s\"}' http://localhost:8080/api/v1/get-status\n",
		auth.DefaultCookieName, session, email)
}
