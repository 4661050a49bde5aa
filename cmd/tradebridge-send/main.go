// One-shot tool: post a batch of order intents to a running tradebridge
// server and print the per-order outcomes.
//
// Usage:
//
//	go run cmd/tradebridge-send/main.go [-url URL] intents.json
//	echo '{"orders":[...]}' | go run cmd/tradebridge-send/main.go -
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"tradebridge/pkg/tradebridge"
)

func main() {
	url := flag.String("url", "http://localhost:8080", "tradebridge server base URL")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: tradebridge-send [-url URL] INTENTS_FILE|-")
		os.Exit(1)
	}

	var (
		body []byte
		err  error
	)
	if flag.Arg(0) == "-" {
		body, err = io.ReadAll(os.Stdin)
	} else {
		body, err = os.ReadFile(flag.Arg(0))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading intents: %v\n", err)
		os.Exit(1)
	}

	var req struct {
		Orders []tradebridge.OrderIntent `json:"orders"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		fmt.Fprintf(os.Stderr, "invalid intents JSON: %v\n", err)
		os.Exit(1)
	}

	client := tradebridge.NewClient(*url)
	resp, err := client.SendBatch(context.Background(), req.Orders)
	if err != nil {
		var apiErr *tradebridge.APIError
		if errors.As(err, &apiErr) && resp == nil {
			fmt.Fprintf(os.Stderr, "batch rejected: %v\n", apiErr)
			os.Exit(1)
		}
		if resp == nil {
			fmt.Fprintf(os.Stderr, "sending batch: %v\n", err)
			os.Exit(1)
		}
		// All orders failed: fall through and print the results.
	}

	fmt.Printf("status=%s  total=%d  ok=%d  failed=%d\n\n",
		resp.Status, resp.TotalOrders, resp.SuccessfulOrders, resp.FailedOrders)
	for _, r := range resp.Results {
		fmt.Printf("  [%d] %-8s %s\n", r.Index, r.Status, r.Message)
	}

	if err != nil {
		os.Exit(1)
	}
}
