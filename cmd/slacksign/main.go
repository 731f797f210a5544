// Command slacksign signs a request body the way Slack does, for poking a local server:
//
//	slacksign -body 'trigger_id=x&text=hello' -curl http://localhost:8080/slack/commands
package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"basegraph.app/issuedesk/internal/slackauth"
)

func main() {
	_ = godotenv.Load(".env")

	body := flag.String("body", "", "request body to sign; read from stdin when empty")
	secret := flag.String("secret", os.Getenv("SLACK_SIGNING_SECRET"), "signing secret (default $SLACK_SIGNING_SECRET)")
	skew := flag.Duration("skew", 0, "shift the timestamp, e.g. -6m to produce a stale request")
	curlURL := flag.String("curl", "", "print a curl command for this URL instead of headers")
	flag.Parse()

	if *secret == "" {
		fmt.Fprintln(os.Stderr, "slacksign: no signing secret (set -secret or SLACK_SIGNING_SECRET)")
		os.Exit(2)
	}

	payload := []byte(*body)
	if *body == "" {
		var err error
		if payload, err = io.ReadAll(os.Stdin); err != nil {
			fmt.Fprintln(os.Stderr, "slacksign: reading stdin:", err)
			os.Exit(1)
		}
	}

	header := http.Header{}
	slackauth.SignHeaders(header, *secret, payload, time.Now().Add(*skew))

	if *curlURL == "" {
		fmt.Printf("%s: %s\n", slackauth.TimestampHeader, header.Get(slackauth.TimestampHeader))
		fmt.Printf("%s: %s\n", slackauth.SignatureHeader, header.Get(slackauth.SignatureHeader))
		return
	}

	fmt.Printf("curl -sS -X POST %s \\\n", shellQuote(*curlURL))
	fmt.Printf("  -H 'Content-Type: application/x-www-form-urlencoded' \\\n")
	fmt.Printf("  -H %s \\\n", shellQuote(slackauth.TimestampHeader+": "+header.Get(slackauth.TimestampHeader)))
	fmt.Printf("  -H %s \\\n", shellQuote(slackauth.SignatureHeader+": "+header.Get(slackauth.SignatureHeader)))
	fmt.Printf("  --data-binary %s\n", shellQuote(string(payload)))
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
