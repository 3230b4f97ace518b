package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"

	contractx "github.com/suratin/leadpilot/agent/contract"
	llmx "github.com/suratin/leadpilot/agent/llm"
	nextactionx "github.com/suratin/leadpilot/agent/nextaction"
	responsex "github.com/suratin/leadpilot/agent/response"
	storex "github.com/suratin/leadpilot/agent/store"
	configx "github.com/suratin/leadpilot/pkg/config"
	_ "github.com/suratin/leadpilot/pkg/logger/autoload"
	openrouterx "github.com/suratin/leadpilot/pkg/openrouter"
)

const usage = `usage: leadpilot [-env path] <command> <customer-id>

commands:
  next-action      suggest the next best action and drive the approval loop
  record-response  record an inbound customer response and refresh the summary`

func main() {
	args := flag.Args()
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	command, customerID := args[0], args[1]

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoCfg := configx.MustNew[storex.Config]("MONGO")
	st, err := storex.Connect(ctx, *mongoCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect document store")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			log.Warn().Err(err).Msg("failed to close document store")
		}
	}()

	openRouterCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
	generator, err := llmx.NewGenerator(*openRouterCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize text generator")
	}

	switch command {
	case "next-action":
		err = runNextAction(ctx, st, generator, customerID)
	case "record-response":
		err = runRecordResponse(ctx, st, generator, customerID)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", command).Msg("run failed")
	}
}

func runNextAction(ctx context.Context, st contractx.Store, generator contractx.TextGenerator, customerID string) error {
	workflowCfg := configx.MustNew[nextactionx.Config]("WORKFLOW")
	w, err := nextactionx.New(st, generator, *workflowCfg)
	if err != nil {
		return err
	}

	res, err := w.Run(ctx, customerID, &stdinApprover{reader: bufio.NewReader(os.Stdin)})
	if err != nil {
		return err
	}

	fmt.Println("\nAction committed.")
	if res.SummaryStale {
		fmt.Println("Summary regeneration failed; the previous summary is unchanged.")
		return nil
	}
	fmt.Printf("\nUpdated summary:\n%s\n", res.UpdatedSummary)
	return nil
}

func runRecordResponse(ctx context.Context, st contractx.Store, generator contractx.TextGenerator, customerID string) error {
	r, err := responsex.New(st, generator)
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Println("Response type: 1) call  2) email  3) meeting")
	fmt.Print("> ")
	choice, err := readLine(reader)
	if err != nil {
		return err
	}
	kind, err := kindFromChoice(choice)
	if err != nil {
		return err
	}

	fmt.Println("Customer response:")
	fmt.Print("> ")
	text, err := readLine(reader)
	if err != nil {
		return err
	}

	updated, err := r.Record(ctx, customerID, kind, text)
	if err != nil {
		return err
	}

	fmt.Printf("\nResponse recorded. Updated summary:\n%s\n", updated)
	return nil
}

func kindFromChoice(choice string) (contractx.Kind, error) {
	switch strings.TrimSpace(choice) {
	case "1", "call":
		return contractx.KindCall, nil
	case "2", "email":
		return contractx.KindEmail, nil
	case "3", "meeting":
		return contractx.KindMeeting, nil
	default:
		return "", fmt.Errorf("%w: unknown response type %q", contractx.ErrValidation, choice)
	}
}

// stdinApprover shows each suggestion on stdout and reads the reviewer's
// verdict from stdin. Typing the accept token commits; any other line is
// sent back as revision feedback.
type stdinApprover struct {
	reader *bufio.Reader
}

func (a *stdinApprover) Review(ctx context.Context, s contractx.Suggestion) (string, error) {
	fmt.Printf("\n================ SUGGESTED NEXT ACTION (%s) ================\n", s.Recommendation)
	fmt.Println(s.Text)
	fmt.Println("=============================================================")
	fmt.Printf("Type %q to approve, or describe the change you want:\n> ", nextactionx.AcceptToken)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return readLine(a.reader)
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
